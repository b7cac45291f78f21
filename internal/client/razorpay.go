package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"nextfunnel-checkout/internal/config"
)

type RazorpayClient interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*RazorpayOrder, error)
	// VerifyPaymentSignature checks the checkout callback signature: an
	// HMAC-SHA256 over "<orderID>|<paymentID>" with the key secret.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	// VerifyWebhookSignature checks the webhook signature over the raw
	// request body with the webhook secret.
	VerifyWebhookSignature(body []byte, signature string) bool
	KeyID() string
}

type RazorpayOrder struct {
	ID       string
	Amount   int64 // smallest currency unit (paise)
	Currency string
}

type razorpayClientImpl struct {
	api           *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpayClient(cfg *config.Razorpay) RazorpayClient {
	return &razorpayClientImpl{
		api:           razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *razorpayClientImpl) KeyID() string {
	return c.keyID
}

func (c *razorpayClientImpl) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*RazorpayOrder, error) {
	data := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	order := &RazorpayOrder{
		Amount:   amountPaise,
		Currency: currency,
	}
	if id, ok := body["id"].(string); ok {
		order.ID = id
	}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if cur, ok := body["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}

	return order, nil
}

func (c *razorpayClientImpl) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	expected := hmacHex([]byte(orderID+"|"+paymentID), c.keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *razorpayClientImpl) VerifyWebhookSignature(body []byte, signature string) bool {
	expected := hmacHex(body, c.webhookSecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func hmacHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

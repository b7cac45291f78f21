package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"nextfunnel-checkout/internal/client"
	"nextfunnel-checkout/internal/model"
)

type fakePaypalClient struct {
	createCalls  int
	captureCalls int
	getCalls     int

	createResp *client.CreateOrderResponse
	createErr  error
	lastCreate client.CreateOrderParams

	captureResp *client.PaypalOrderResult
	captureErr  error

	getResp *client.PaypalOrderResult
	getErr  error
}

func (f *fakePaypalClient) CreateOrder(ctx context.Context, params client.CreateOrderParams) (*client.CreateOrderResponse, error) {
	f.createCalls++
	f.lastCreate = params
	return f.createResp, f.createErr
}

func (f *fakePaypalClient) GetOrder(ctx context.Context, orderID string) (*client.PaypalOrderResult, error) {
	f.getCalls++
	return f.getResp, f.getErr
}

func (f *fakePaypalClient) CaptureOrder(ctx context.Context, orderID string) (*client.PaypalOrderResult, error) {
	f.captureCalls++
	return f.captureResp, f.captureErr
}

type fakeRazorpayClient struct {
	createCalls int
	createResp  *client.RazorpayOrder
	createErr   error
	lastAmount  int64

	keySecret     string
	webhookSecret string
}

func (f *fakeRazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*client.RazorpayOrder, error) {
	f.createCalls++
	f.lastAmount = amountPaise
	return f.createResp, f.createErr
}

func (f *fakeRazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(f.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(signature))
}

func (f *fakeRazorpayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(f.webhookSecret))
	mac.Write(body)
	return hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(signature))
}

func (f *fakeRazorpayClient) KeyID() string { return "rzp_test_key" }

type fakeRates struct {
	calls int
	rate  float64
	err   error
}

func (f *fakeRates) Rate(ctx context.Context, target string) (float64, error) {
	f.calls++
	return f.rate, f.err
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*model.Order
	completed map[string]int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    make(map[string]*model.Order),
		completed: make(map[string]int),
	}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[order.OrderID]; ok {
		return nil
	}
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeOrderRepo) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, errors.New("record not found")
	}
	return order, nil
}

func (f *fakeOrderRepo) MarkCompleted(ctx context.Context, orderID, captureID, payerName, payerEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[orderID]++
	if order, ok := f.orders[orderID]; ok && order.Status != "COMPLETED" {
		order.Status = "COMPLETED"
		order.CaptureID = captureID
	}
	return nil
}

func (f *fakeOrderRepo) MarkFailed(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[orderID]; ok && order.Status != "COMPLETED" {
		order.Status = "FAILED"
	}
	return nil
}

func (f *fakeOrderRepo) IsCompleted(ctx context.Context, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	return ok && order.Status == "COMPLETED", nil
}

type fakeWebhookEventRepo struct {
	mu   sync.Mutex
	seen map[string]string
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{seen: make(map[string]string)}
}

func (f *fakeWebhookEventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[eventID]
	return ok, nil
}

func (f *fakeWebhookEventRepo) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[eventID] = eventType
	return nil
}

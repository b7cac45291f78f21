package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"nextfunnel-checkout/internal/client"
	"nextfunnel-checkout/internal/repository"
)

type RazorpayService interface {
	// VerifyPayment checks the checkout callback signature and marks the
	// order completed. A mismatch is a hard rejection.
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) error
	// HandleWebhook verifies the raw-body signature before parsing,
	// dedupes by event id and applies payment-captured events to the
	// ledger.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type razorpayServiceImpl struct {
	razorpayClient   client.RazorpayClient
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewRazorpayService(
	razorpayClient client.RazorpayClient,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
) RazorpayService {
	return &razorpayServiceImpl{
		razorpayClient:   razorpayClient,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

func (s *razorpayServiceImpl) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return fmt.Errorf("%w: missing fields", ErrInvalidSignature)
	}

	if !s.razorpayClient.VerifyPaymentSignature(orderID, paymentID, signature) {
		// Do not log the signature material itself.
		log.Printf("razorpay signature mismatch for order %s", orderID)
		return ErrInvalidSignature
	}

	if err := s.orderRepo.MarkCompleted(ctx, orderID, paymentID, "", ""); err != nil {
		return fmt.Errorf("mark order completed: %w", err)
	}
	return nil
}

type razorpayWebhookEvent struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	// Some test payloads carry "type" instead of "event".
	Type    string `json:"type"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Email   string `json:"email"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (s *razorpayServiceImpl) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.razorpayClient.VerifyWebhookSignature(body, signature) {
		return fmt.Errorf("%w: webhook signature mismatch", ErrInvalidSignature)
	}

	var event razorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	eventType := event.Event
	if eventType == "" {
		eventType = event.Type
	}

	// Webhooks are delivered at least once; skip events already applied.
	if event.ID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("check webhook event: %w", err)
		}
		if seen {
			return nil
		}
	}

	switch eventType {
	case "payment.captured", "order.paid":
		payment := event.Payload.Payment.Entity
		if payment.OrderID != "" {
			if err := s.orderRepo.MarkCompleted(ctx, payment.OrderID, payment.ID, "", payment.Email); err != nil {
				return fmt.Errorf("mark order completed: %w", err)
			}
		}
	case "payment.failed":
		if orderID := event.Payload.Payment.Entity.OrderID; orderID != "" {
			if err := s.orderRepo.MarkFailed(ctx, orderID); err != nil {
				return fmt.Errorf("mark order failed: %w", err)
			}
		}
	}

	eventID := event.ID
	if eventID == "" {
		// Events without an id still get a processing record.
		eventID = uuid.NewString()
	}
	return s.webhookEventRepo.MarkProcessed(ctx, eventID, eventType)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nextfunnel-checkout/internal/client"
	"nextfunnel-checkout/internal/repository"
)

// CaptureResult is the canonical, provider-independent view of a capture.
// It is constructed fresh per request and never cached.
type CaptureResult struct {
	OrderID    string `json:"orderId"`
	Status     string `json:"status"`
	CaptureID  string `json:"captureId,omitempty"`
	PayerName  string `json:"payerName,omitempty"`
	PayerEmail string `json:"payerEmail,omitempty"`
	Amount     string `json:"amount,omitempty"`
	Currency   string `json:"currency,omitempty"`
	PlanID     string `json:"planId,omitempty"`
}

// CheckOutcome is what the status-check endpoint reports to the poller.
type CheckOutcome struct {
	Status    string         `json:"status"`
	Completed bool           `json:"completed,omitempty"`
	Captured  bool           `json:"captured,omitempty"`
	CaptureID string         `json:"captureId,omitempty"`
	Result    *CaptureResult `json:"result,omitempty"`
}

type CaptureService interface {
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)
	// CheckOrder fetches the current order state. An APPROVED order is
	// captured automatically; COMPLETED is reported as done; anything
	// else is returned as-is for the poller to keep waiting.
	CheckOrder(ctx context.Context, orderID string) (*CheckOutcome, error)
}

type captureServiceImpl struct {
	paypalClient client.PaypalClient
	orderRepo    repository.OrderRepository
}

func NewCaptureService(paypalClient client.PaypalClient, orderRepo repository.OrderRepository) CaptureService {
	return &captureServiceImpl{
		paypalClient: paypalClient,
		orderRepo:    orderRepo,
	}
}

// successStatuses is the fixed acceptance set for a successful capture,
// matched case-insensitively. PayPal reports COMPLETED or CAPTURED depending
// on the API used.
var successStatuses = map[string]struct{}{
	"COMPLETED": {},
	"CAPTURED":  {},
	"SUCCESS":   {},
}

// IsSuccessfulStatus reports whether a provider capture status counts as a
// successful capture.
func IsSuccessfulStatus(status string) bool {
	_, ok := successStatuses[strings.ToUpper(status)]
	return ok
}

// NormalizeStatus maps a raw provider status onto the canonical order status
// enum: CREATED, APPROVED, COMPLETED, FAILED or UNKNOWN.
func NormalizeStatus(status string) string {
	switch s := strings.ToUpper(status); s {
	case "COMPLETED", "CAPTURED", "SUCCESS":
		return "COMPLETED"
	case "APPROVED":
		return "APPROVED"
	case "CREATED", "SAVED", "PENDING", "PAYER_ACTION_REQUIRED":
		return "CREATED"
	case "VOIDED", "DECLINED", "FAILED":
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

func (s *captureServiceImpl) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	res, err := s.paypalClient.CaptureOrder(ctx, orderID)
	if err != nil {
		var apiErr *client.PaypalAPIError
		if errors.As(err, &apiErr) {
			// The provider enforces capture idempotency: a replayed
			// capture of a completed order is a success, not an error.
			if strings.Contains(apiErr.Body, "ORDER_ALREADY_CAPTURED") {
				return s.reportCapturedOrder(ctx, orderID)
			}
			return nil, fmt.Errorf("%w: status=%d body=%s", ErrCaptureFailed, apiErr.StatusCode, apiErr.Body)
		}
		return nil, fmt.Errorf("paypal api capture order: %w", err)
	}

	result := normalizePaypalOrder(orderID, res)
	if IsSuccessfulStatus(result.Status) {
		s.markCompleted(ctx, result)
	}
	return result, nil
}

func (s *captureServiceImpl) CheckOrder(ctx context.Context, orderID string) (*CheckOutcome, error) {
	order, err := s.paypalClient.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch order from paypal: %w", err)
	}

	status := strings.ToUpper(order.Status)
	if status == "" {
		status = "UNKNOWN"
	}

	switch status {
	case "COMPLETED":
		result := normalizePaypalOrder(orderID, order)
		s.markCompleted(ctx, result)
		return &CheckOutcome{
			Status:    status,
			Completed: true,
			Result:    result,
		}, nil
	case "APPROVED":
		result, err := s.CaptureOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &CheckOutcome{
			Status:    result.Status,
			Captured:  true,
			CaptureID: result.CaptureID,
			Result:    result,
		}, nil
	default:
		// CREATED, PAYER_ACTION_REQUIRED, VOIDED etc: report as-is.
		return &CheckOutcome{
			Status: status,
			Result: normalizePaypalOrder(orderID, order),
		}, nil
	}
}

// reportCapturedOrder re-fetches an already-captured order and reports it as
// the equivalent successful result.
func (s *captureServiceImpl) reportCapturedOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	order, err := s.paypalClient.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch already-captured order: %w", err)
	}
	result := normalizePaypalOrder(orderID, order)
	if IsSuccessfulStatus(result.Status) {
		s.markCompleted(ctx, result)
	}
	return result, nil
}

func (s *captureServiceImpl) markCompleted(ctx context.Context, result *CaptureResult) {
	// Conditional update: replays of an already-completed order are no-ops.
	_ = s.orderRepo.MarkCompleted(ctx, result.OrderID, result.CaptureID, result.PayerName, result.PayerEmail)
}

// normalizePaypalOrder flattens the provider's nested optional fields into
// the canonical result. Missing sub-fields yield empty values, never errors.
//
// Status priority: top-level status, else first purchase unit's first
// capture status, else UNKNOWN. Capture id: first purchase unit's first
// capture id, else top-level order id.
func normalizePaypalOrder(orderID string, res *client.PaypalOrderResult) *CaptureResult {
	result := &CaptureResult{
		OrderID: orderID,
		Status:  strings.ToUpper(res.Status),
	}

	if len(res.PurchaseUnits) > 0 {
		pu := res.PurchaseUnits[0]
		result.PlanID = pu.CustomID

		if pu.Payments != nil && len(pu.Payments.Captures) > 0 {
			capture := pu.Payments.Captures[0]
			if result.Status == "" {
				result.Status = strings.ToUpper(capture.Status)
			}
			result.CaptureID = capture.ID
			if capture.Amount != nil {
				result.Amount = capture.Amount.Value
				result.Currency = capture.Amount.CurrencyCode
			}
		}
		if result.Amount == "" && pu.Amount != nil {
			result.Amount = pu.Amount.Value
			result.Currency = pu.Amount.CurrencyCode
		}
	}

	if result.CaptureID == "" {
		result.CaptureID = res.ID
	}
	if result.Status == "" {
		result.Status = "UNKNOWN"
	}

	if res.Payer != nil {
		result.PayerEmail = res.Payer.Email
		if res.Payer.Name != nil {
			result.PayerName = joinName(res.Payer.Name.GivenName, res.Payer.Name.Surname)
		}
	}

	return result
}

func joinName(given, surname string) string {
	switch {
	case given != "" && surname != "":
		return given + " " + surname
	case given != "":
		return given
	default:
		return surname
	}
}

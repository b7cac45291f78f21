package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"nextfunnel-checkout/internal/currency"
	"nextfunnel-checkout/internal/dto"
	"nextfunnel-checkout/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	captureService  service.CaptureService
	razorpayService service.RazorpayService
}

func NewCheckoutHandler(
	checkoutService service.CheckoutService,
	captureService service.CaptureService,
	razorpayService service.RazorpayService,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		captureService:  captureService,
		razorpayService: razorpayService,
	}
}

func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid req body"})
	}

	result, err := h.checkoutService.CreateOrder(ctx, req.PlanID, req.Currency, req.Provider)
	if err != nil {
		c.Logger().Errorf("create order: %v", err)
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid planId"})
		case errors.Is(err, service.ErrConfiguration):
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "service not configured"})
		case errors.Is(err, service.ErrProviderResponseInvalid):
			return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to create order or approval link"})
		case errors.Is(err, currency.ErrRateUnavailable):
			return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "exchange rate unavailable"})
		default:
			return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "create order failed"})
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) CheckOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.Param("orderId")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "orderId required"})
	}

	outcome, err := h.captureService.CheckOrder(ctx, orderID)
	if err != nil {
		c.Logger().Errorf("check order %s: %v", orderID, err)
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to fetch order from provider"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":        true,
		"status":    outcome.Status,
		"completed": outcome.Completed,
		"captured":  outcome.Captured,
		"captureId": outcome.CaptureID,
		"result":    outcome.Result,
	})
}

func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid req body"})
	}
	if req.OrderID == "" {
		req.OrderID = c.Param("orderId")
	}

	if err := h.razorpayService.VerifyPayment(ctx, req.OrderID, req.PaymentID, req.Signature); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid signature"})
		}
		c.Logger().Errorf("verify payment %s: %v", req.OrderID, err)
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "verify failed"})
	}

	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *CheckoutHandler) PaymentWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	// Signature verification needs the raw bytes, not a re-marshalled
	// payload.
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unreadable body"})
	}
	signature := c.Request().Header.Get("X-Razorpay-Signature")

	if err := h.razorpayService.HandleWebhook(ctx, body, signature); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid webhook signature"})
		}
		c.Logger().Errorf("handle webhook: %v", err)
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "webhook processing failed"})
	}

	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

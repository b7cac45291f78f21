package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nextfunnel-checkout/internal/catalog"
	"nextfunnel-checkout/internal/client"
	"nextfunnel-checkout/internal/config"
	"nextfunnel-checkout/internal/currency"
	"nextfunnel-checkout/internal/dto"
	"nextfunnel-checkout/internal/model"
	"nextfunnel-checkout/internal/repository"
)

// RateSource yields USD->target exchange rates. *currency.Resolver is the
// production implementation.
type RateSource interface {
	Rate(ctx context.Context, target string) (float64, error)
}

type CheckoutService interface {
	CreateOrder(ctx context.Context, planID, requestedCurrency, provider string) (*dto.CreateOrderResponse, error)
}

type checkoutServiceImpl struct {
	paypalClient   client.PaypalClient
	razorpayClient client.RazorpayClient
	rates          RateSource
	orderRepo      repository.OrderRepository
	cfg            *config.Config
}

func NewCheckoutService(
	paypalClient client.PaypalClient,
	razorpayClient client.RazorpayClient,
	rates RateSource,
	orderRepo repository.OrderRepository,
	cfg *config.Config,
) CheckoutService {
	return &checkoutServiceImpl{
		paypalClient:   paypalClient,
		razorpayClient: razorpayClient,
		rates:          rates,
		orderRepo:      orderRepo,
		cfg:            cfg,
	}
}

func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, planID, requestedCurrency, provider string) (*dto.CreateOrderResponse, error) {
	planID = strings.TrimSpace(planID)
	price, ok := catalog.PlanPriceUSD(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, planID)
	}

	// The requested currency is kept for display and redirect URLs even
	// when settlement happens in another currency.
	requested := strings.ToUpper(strings.TrimSpace(requestedCurrency))
	if requested == "" {
		requested = currency.Base
	}
	normalized := catalog.NormalizeCurrency(requested)

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "paypal":
		return s.createPaypalOrder(ctx, planID, price, requested, normalized)
	case "razorpay":
		return s.createRazorpayOrder(ctx, planID, price, requested)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidPlan, provider)
	}
}

func (s *checkoutServiceImpl) createPaypalOrder(ctx context.Context, planID string, price decimal.Decimal, requested, normalized string) (*dto.CreateOrderResponse, error) {
	settlement := catalog.PaypalSettlementCurrency(normalized)

	amount := price
	if settlement != currency.Base {
		rate, err := s.rates.Rate(ctx, settlement)
		if err != nil {
			// Conversion failure is recovered locally: settle the
			// canonical USD amount instead.
			log.Printf("exchange rate lookup failed for %s, falling back to USD: %v", settlement, err)
			settlement = currency.Base
		} else {
			amount = catalog.ConvertUSD(price, rate)
		}
	}
	amountStr := catalog.FormatAmount(amount)

	baseURL, err := s.cfg.ResolveBaseURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	query := fmt.Sprintf("plan=%s&currency=%s", url.QueryEscape(planID), url.QueryEscape(requested))

	resp, err := s.paypalClient.CreateOrder(ctx, client.CreateOrderParams{
		Amount:    amountStr,
		Currency:  settlement,
		ReturnURL: fmt.Sprintf("%s/checkout/success?%s", baseURL, query),
		CancelURL: fmt.Sprintf("%s/checkout/cancel?%s", baseURL, query),
		CustomID:  planID,
	})
	if err != nil {
		return nil, fmt.Errorf("paypal api create order: %w", err)
	}
	if resp.OrderID == "" || resp.ApproveURL == "" {
		return nil, fmt.Errorf("%w: order id or approval link missing", ErrProviderResponseInvalid)
	}

	s.recordOrder(ctx, &model.Order{
		OrderID:            resp.OrderID,
		Provider:           model.ProviderPaypal,
		PlanID:             planID,
		Status:             "CREATED",
		AmountUSD:          catalog.FormatAmount(price),
		SettlementAmount:   amountStr,
		SettlementCurrency: settlement,
		RequestedCurrency:  requested,
	})

	return &dto.CreateOrderResponse{
		OK:                true,
		OrderID:           resp.OrderID,
		ApproveURL:        resp.ApproveURL,
		Amount:            amountStr,
		Currency:          settlement,
		RequestedCurrency: requested,
		PlanID:            planID,
	}, nil
}

func (s *checkoutServiceImpl) createRazorpayOrder(ctx context.Context, planID string, price decimal.Decimal, requested string) (*dto.CreateOrderResponse, error) {
	// Razorpay settles in INR; there is no USD fallback here, so a rate
	// failure propagates to the caller.
	rate, err := s.rates.Rate(ctx, "INR")
	if err != nil {
		return nil, fmt.Errorf("razorpay settlement rate: %w", err)
	}

	amountINR := catalog.ConvertUSD(price, rate)
	amountPaise := amountINR.Shift(2).Round(0).IntPart()
	receipt := fmt.Sprintf("receipt_%s_%s", planID, uuid.NewString()[:8])

	order, err := s.razorpayClient.CreateOrder(ctx, amountPaise, "INR", receipt)
	if err != nil {
		return nil, fmt.Errorf("razorpay api create order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: order id missing", ErrProviderResponseInvalid)
	}

	amountStr := catalog.FormatAmount(amountINR)
	s.recordOrder(ctx, &model.Order{
		OrderID:            order.ID,
		Provider:           model.ProviderRazorpay,
		PlanID:             planID,
		Status:             "CREATED",
		AmountUSD:          catalog.FormatAmount(price),
		SettlementAmount:   amountStr,
		SettlementCurrency: "INR",
		RequestedCurrency:  requested,
	})

	return &dto.CreateOrderResponse{
		OK:                true,
		OrderID:           order.ID,
		KeyID:             s.razorpayClient.KeyID(),
		Amount:            amountStr,
		Currency:          "INR",
		RequestedCurrency: requested,
		PlanID:            planID,
	}, nil
}

// recordOrder writes the ledger row. The provider remains the system of
// record for order state, so a ledger write failure is logged rather than
// failing a request whose provider order already exists.
func (s *checkoutServiceImpl) recordOrder(ctx context.Context, order *model.Order) {
	if err := s.orderRepo.Create(ctx, order); err != nil {
		log.Printf("record order %s in ledger: %v", order.OrderID, err)
	}
}

package dto

type CreateOrderRequest struct {
	PlanID   string `json:"planId"`
	Currency string `json:"currency"`
	Provider string `json:"provider"` // "paypal" (default) or "razorpay"
}

type CreateOrderResponse struct {
	OK      bool   `json:"ok"`
	OrderID string `json:"orderId"`
	// ApproveURL is set for redirect-based providers (PayPal).
	ApproveURL string `json:"approveUrl,omitempty"`
	// KeyID is set for client-SDK providers (Razorpay).
	KeyID string `json:"keyId,omitempty"`
	// Amount/Currency are the settlement values actually sent to the
	// provider; RequestedCurrency is what the user asked for.
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	RequestedCurrency string `json:"requestedCurrency"`
	PlanID            string `json:"planId"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

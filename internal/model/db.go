package model

import "time"

const (
	ProviderPaypal   = "PAYPAL"
	ProviderRazorpay = "RAZORPAY"
)

// Order is the durable ledger row keyed by the provider-assigned order id.
// It exists so that at-least-once webhook delivery and client polling
// converge on a single terminal record instead of double-processing.
type Order struct {
	OrderID  string `gorm:"primaryKey;size:64;not null"` // provider order id
	Provider string `gorm:"size:16;index;not null"`      // PAYPAL, RAZORPAY
	PlanID   string `gorm:"size:64;not null"`
	Status   string `gorm:"size:32;index;not null"` // CREATED, APPROVED, COMPLETED, FAILED

	AmountUSD          string `gorm:"size:16;not null"` // canonical plan price
	SettlementAmount   string `gorm:"size:16;not null"`
	SettlementCurrency string `gorm:"size:8;not null"`
	RequestedCurrency  string `gorm:"size:8;not null"`

	CaptureID  string `gorm:"size:64"`
	PayerName  string `gorm:"size:128"`
	PayerEmail string `gorm:"size:128"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

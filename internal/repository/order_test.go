package repository

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"nextfunnel-checkout/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}, &model.WebhookEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testOrder(orderID string) *model.Order {
	return &model.Order{
		OrderID:            orderID,
		Provider:           model.ProviderPaypal,
		PlanID:             "starter",
		Status:             "CREATED",
		AmountUSD:          "299.00",
		SettlementAmount:   "299.00",
		SettlementCurrency: "USD",
		RequestedCurrency:  "INR",
	}
}

func TestOrderCreateIsIdempotent(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testOrder("ORD-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Retried creation with the same provider order id must not fail or
	// clobber the existing row.
	if err := repo.Create(ctx, testOrder("ORD-1")); err != nil {
		t.Fatalf("retried create: %v", err)
	}

	got, err := repo.FindByOrderID(ctx, "ORD-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != "CREATED" {
		t.Fatalf("status = %q, want CREATED", got.Status)
	}
}

func TestMarkCompletedConvergesOnReplay(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testOrder("ORD-2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.MarkCompleted(ctx, "ORD-2", "CAP-1", "Jo Doe", "jo@example.com"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	// Webhook replay after the poller already completed the order.
	if err := repo.MarkCompleted(ctx, "ORD-2", "CAP-other", "", ""); err != nil {
		t.Fatalf("replayed mark completed: %v", err)
	}

	got, err := repo.FindByOrderID(ctx, "ORD-2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != "COMPLETED" {
		t.Fatalf("status = %q, want COMPLETED", got.Status)
	}
	if got.CaptureID != "CAP-1" {
		t.Fatalf("capture id = %q, want CAP-1 from first completion", got.CaptureID)
	}

	done, err := repo.IsCompleted(ctx, "ORD-2")
	if err != nil || !done {
		t.Fatalf("IsCompleted = %v, %v; want true", done, err)
	}
}

func TestMarkFailedDoesNotTouchCompletedOrders(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testOrder("ORD-3")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.MarkCompleted(ctx, "ORD-3", "CAP-1", "", ""); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if err := repo.MarkFailed(ctx, "ORD-3"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	got, err := repo.FindByOrderID(ctx, "ORD-3")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != "COMPLETED" {
		t.Fatalf("status = %q, want COMPLETED to stick", got.Status)
	}
}

func TestWebhookEventDedupe(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t))
	ctx := context.Background()

	seen, err := repo.Exists(ctx, "evt_1")
	if err != nil || seen {
		t.Fatalf("Exists before processing = %v, %v; want false", seen, err)
	}

	if err := repo.MarkProcessed(ctx, "evt_1", "payment.captured"); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	// At-least-once delivery: the second mark must not error.
	if err := repo.MarkProcessed(ctx, "evt_1", "payment.captured"); err != nil {
		t.Fatalf("replayed mark processed: %v", err)
	}

	seen, err = repo.Exists(ctx, "evt_1")
	if err != nil || !seen {
		t.Fatalf("Exists after processing = %v, %v; want true", seen, err)
	}
}

package submissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/idempotency"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
)

func sampleOrder() orders.BulkOrder {
	return orders.BulkOrder{
		Amount:          decimal.RequireFromString("40"),
		PaymentMode:     orders.PaymentCash,
		PayeeName:       "Pat",
		PayeeEmail:      "pat@example.com",
		PayeeContactNo:  "91234567",
		BulkOrderStatus: orders.StatusCreated,
		SalesOrders: []orders.SalesOrder{{
			CustomerName:      "Ann",
			CustomerContactNo: "98765432",
			CustomerAddress:   "1 Main St",
			PostalCode:        "123456",
			Amount:            decimal.RequireFromString("40"),
			SalesOrderItems: []orders.SalesOrderItem{{
				ProductName: "Gold",
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("20"),
			}},
		}},
	}
}

func newTestLedger(withSubs bool) (*Ledger, *mockDynamo) {
	mock := newMockDynamo()
	idem := idempotency.NewStore(mock, "idempotency", time.Hour)
	var subs *Store
	if withSubs {
		subs = NewStore(mock, "submissions")
	}
	return NewLedger(idem, subs, logging.Discard()), mock
}

func TestLedger_BeginFinishReplay(t *testing.T) {
	for _, withSubs := range []bool{true, false} {
		l, mock := newTestLedger(withSubs)
		ctx := context.Background()

		replay, err := l.Begin(ctx, "k1", "d1", sampleOrder())
		if err != nil || replay != "" {
			t.Fatalf("subs=%v: first Begin = (%q, %v)", withSubs, replay, err)
		}

		if _, err := l.Begin(ctx, "k1", "d1", sampleOrder()); !errors.Is(err, ErrInProgress) {
			t.Fatalf("subs=%v: expected ErrInProgress, got %v", withSubs, err)
		}

		if err := l.Finish(ctx, "k1", "order-1"); err != nil {
			t.Fatalf("subs=%v: finish: %v", withSubs, err)
		}

		replay, err = l.Begin(ctx, "k1", "d1", sampleOrder())
		if err != nil || replay != "order-1" {
			t.Fatalf("subs=%v: expected replay of order-1, got (%q, %v)", withSubs, replay, err)
		}

		if withSubs {
			sub, err := NewStore(mock, "submissions").Get(ctx, "k1")
			if err != nil || sub == nil {
				t.Fatalf("get submission: (%+v, %v)", sub, err)
			}
			if sub.Status != StatusSubmitted || sub.OrderID != "order-1" || sub.Amount != "40" || sub.Recipients != 1 {
				t.Fatalf("unexpected submission: %+v", sub)
			}
		}
	}
}

func TestLedger_FailThenRetry(t *testing.T) {
	l, mock := newTestLedger(true)
	ctx := context.Background()

	if _, err := l.Begin(ctx, "k1", "d1", sampleOrder()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := l.Fail(ctx, "k1", errors.New("backend returned 502")); err != nil {
		t.Fatalf("fail: %v", err)
	}

	replay, err := l.Begin(ctx, "k1", "d1", sampleOrder())
	if err != nil || replay != "" {
		t.Fatalf("expected reopened attempt, got (%q, %v)", replay, err)
	}

	rec, _ := idempotency.NewStore(mock, "idempotency", time.Hour).Get(ctx, "k1")
	if rec.Status != idempotency.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS after retry, got %s", rec.Status)
	}
	sub, _ := NewStore(mock, "submissions").Get(ctx, "k1")
	if sub.Status != StatusPending || sub.Attempts != 1 {
		t.Fatalf("unexpected submission after retry: %+v", sub)
	}
}

func TestLedger_KeyFromAnotherDraft(t *testing.T) {
	l, _ := newTestLedger(false)
	ctx := context.Background()

	if _, err := l.Begin(ctx, "k1", "d1", sampleOrder()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := l.Begin(ctx, "k1", "d2", sampleOrder()); !errors.Is(err, ErrKeyReused) {
		t.Fatalf("expected ErrKeyReused reusing a key across drafts, got %v", err)
	}
}

func TestLedger_EditedOrderAfterCompletion(t *testing.T) {
	l, _ := newTestLedger(true)
	ctx := context.Background()

	if _, err := l.Begin(ctx, "k1", "d1", sampleOrder()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := l.Finish(ctx, "k1", "order-1"); err != nil {
		t.Fatalf("finish: %v", err)
	}

	edited := sampleOrder()
	edited.PayeeName = "Someone Else"
	if _, err := l.Begin(ctx, "k1", "d1", edited); !errors.Is(err, ErrKeyReused) {
		t.Fatalf("expected ErrKeyReused for an edited order, got %v", err)
	}
}

func TestLedger_EditedOrderAfterFailure(t *testing.T) {
	l, mock := newTestLedger(false)
	ctx := context.Background()

	if _, err := l.Begin(ctx, "k1", "d1", sampleOrder()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := l.Fail(ctx, "k1", errors.New("timeout")); err != nil {
		t.Fatalf("fail: %v", err)
	}

	edited := sampleOrder()
	edited.PayeeName = "Someone Else"
	if replay, err := l.Begin(ctx, "k1", "d1", edited); err != nil || replay != "" {
		t.Fatalf("expected a fresh attempt, got (%q, %v)", replay, err)
	}
	if err := l.Finish(ctx, "k1", "order-2"); err != nil {
		t.Fatalf("finish: %v", err)
	}
	replay, err := l.Begin(ctx, "k1", "d1", edited)
	if err != nil || replay != "order-2" {
		t.Fatalf("expected replay of order-2, got (%q, %v)", replay, err)
	}

	rec, _ := idempotency.NewStore(mock, "idempotency", time.Hour).Get(ctx, "k1")
	if !rec.Matches("d1", fingerprintOf(t, edited)) {
		t.Fatalf("record should carry the fingerprint of the retried order: %+v", rec)
	}
}

func fingerprintOf(t *testing.T, order orders.BulkOrder) string {
	t.Helper()
	sub, err := newSubmission("k", "d", order)
	if err != nil {
		t.Fatalf("newSubmission: %v", err)
	}
	return fingerprint(sub.BulkOrder)
}

func TestLedger_TransactError(t *testing.T) {
	l, mock := newTestLedger(true)
	mock.transactErr = errors.New("throttled")

	if _, err := l.Begin(context.Background(), "k1", "d1", sampleOrder()); err == nil || errors.Is(err, ErrKeyExists) {
		t.Fatalf("expected a wrapped transport error, got %v", err)
	}
}

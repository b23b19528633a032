package submissions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/idempotency"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
)

// ErrInProgress is returned by Begin when another attempt with the same key
// has not finished yet.
var ErrInProgress = errors.New("submission with this idempotency key is in progress")

// ErrKeyReused is returned by Begin when a key is presented again for another
// draft, or for a different order after its first attempt completed.
var ErrKeyReused = errors.New("idempotency key was used for a different order")

// Ledger deduplicates submit attempts by idempotency key and, when a
// submissions table is configured, keeps an audit record of every attempt.
type Ledger struct {
	idem *idempotency.Store
	subs *Store // optional
	log  *logrus.Logger
}

func NewLedger(idem *idempotency.Store, subs *Store, log *logrus.Logger) *Ledger {
	return &Ledger{idem: idem, subs: subs, log: log}
}

// Begin records a new attempt. If the key already completed, it returns the
// order id created by that attempt and the caller must not submit again.
// A key whose last attempt failed is reopened.
func (l *Ledger) Begin(ctx context.Context, key, draftID string, order orders.BulkOrder) (string, error) {
	sub, err := newSubmission(key, draftID, order)
	if err != nil {
		return "", err
	}
	hash := fingerprint(sub.BulkOrder)
	rec := l.idem.NewRecord(key, draftID, hash)

	if l.subs != nil {
		err = l.subs.CreateWithIdempotencyTransaction(ctx, l.idem.TableName(), rec, sub)
		if err == nil {
			return "", nil
		}
		if !errors.Is(err, ErrKeyExists) {
			return "", err
		}
	} else {
		created, err := l.idem.CreateIfNotExists(ctx, key, draftID, hash)
		if err != nil {
			return "", err
		}
		if created {
			return "", nil
		}
	}

	existing, err := l.idem.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", fmt.Errorf("idempotency record %q vanished", key)
	}
	if existing.DraftID != draftID {
		return "", ErrKeyReused
	}

	switch existing.Status {
	case idempotency.StatusDone:
		if !existing.Matches(draftID, hash) {
			return "", ErrKeyReused
		}
		l.log.WithFields(logrus.Fields{"idempotency_key": key, "order_id": existing.OrderID}).Info("replaying completed submission")
		return existing.OrderID, nil
	case idempotency.StatusInProgress:
		return "", ErrInProgress
	case idempotency.StatusFailed:
		if err := l.idem.Reopen(ctx, key, hash); err != nil {
			if errors.Is(err, idempotency.ErrConditionFailed) {
				return "", ErrInProgress
			}
			return "", err
		}
		if l.subs != nil {
			if err := l.subs.Restart(ctx, sub); err != nil {
				return "", err
			}
		}
		l.log.WithFields(logrus.Fields{"idempotency_key": key, "draft_id": draftID}).Info("retrying failed submission")
		return "", nil
	default:
		return "", fmt.Errorf("unknown idempotency status %q", existing.Status)
	}
}

// Finish marks the attempt done with the backend order id.
func (l *Ledger) Finish(ctx context.Context, key, orderID string) error {
	body, _ := json.Marshal(map[string]string{"orderId": orderID})
	if err := l.idem.MarkDone(ctx, key, orderID, string(body), http.StatusCreated); err != nil {
		return err
	}
	if l.subs != nil {
		return l.subs.MarkSubmitted(ctx, key, orderID)
	}
	return nil
}

// Fail marks the attempt failed so the same key can be retried.
func (l *Ledger) Fail(ctx context.Context, key string, cause error) error {
	note := cause.Error()
	if err := l.idem.MarkFailed(ctx, key, note); err != nil {
		return err
	}
	if l.subs != nil {
		return l.subs.MarkFailed(ctx, key, note)
	}
	return nil
}

// fingerprint identifies the exact order body sent for an attempt.
func fingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func newSubmission(key, draftID string, order orders.BulkOrder) (Submission, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return Submission{}, fmt.Errorf("marshal bulk order: %w", err)
	}
	return Submission{
		SubmissionKey: key,
		DraftID:       draftID,
		Status:        StatusPending,
		PayeeEmail:    order.PayeeEmail,
		PaymentMode:   string(order.PaymentMode),
		Amount:        order.Amount.String(),
		Recipients:    len(order.SalesOrders),
		BulkOrder:     string(body),
	}, nil
}

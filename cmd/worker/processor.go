package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/aws"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/submissions"
)

const moduleName = "worker"

// errMalformed marks a message that can never be processed; it is dropped instead of retried.
var errMalformed = errors.New("malformed message")

// SubmissionStore is the part of the submissions table the worker reconciles against.
type SubmissionStore interface {
	Get(ctx context.Context, key string) (*submissions.Submission, error)
	MarkSubmitted(ctx context.Context, key, orderID string) error
}

// MetricsRecorder emits per-order metrics.
type MetricsRecorder interface {
	RecordBulkOrderCreated(ctx context.Context, paymentMode string, amount float64, recipients int) error
}

// Processor consumes BulkOrderCreated events. It makes sure the submission
// audit record agrees with the created order and emits CloudWatch metrics.
type Processor struct {
	subs    SubmissionStore // optional
	metrics MetricsRecorder
	log     *logrus.Logger
}

// NewProcessor creates a new worker processor. subs may be nil when no
// submissions table is configured.
func NewProcessor(subs SubmissionStore, metrics MetricsRecorder, log *logrus.Logger) *Processor {
	if log == nil {
		log = logging.Discard()
	}
	return &Processor{subs: subs, metrics: metrics, log: log}
}

// Handle processes an SQS batch. Messages that fail transiently are reported
// back as batch item failures so only they are redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	p.log.WithField("count", len(ev.Records)).Debug("received SQS messages")

	for _, rec := range ev.Records {
		err := p.processMessage(ctx, rec)
		switch {
		case err == nil:
		case errors.Is(err, errMalformed):
			logging.LogError(p.log, moduleName, "Handle", "dropping message", rec.MessageId, err)
		default:
			logging.LogError(p.log, moduleName, "Handle", "message will be retried", rec.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg aws.BulkOrderCreated
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("%w: invalid body: %v", errMalformed, err)
	}
	if msg.OrderID == "" {
		return fmt.Errorf("%w: missing order_id", errMalformed)
	}
	amount, err := decimal.NewFromString(msg.Amount)
	if err != nil {
		return fmt.Errorf("%w: invalid amount %q", errMalformed, msg.Amount)
	}

	entry := p.log.WithFields(logrus.Fields{
		"order_id":       msg.OrderID,
		"draft_id":       msg.DraftID,
		"correlation_id": msg.CorrelationID,
	})
	entry.Info("processing bulk order created")

	if err := p.reconcile(ctx, msg, entry); err != nil {
		return err
	}

	if p.metrics != nil {
		if err := p.metrics.RecordBulkOrderCreated(ctx, msg.PaymentMode, amount.InexactFloat64(), msg.Recipients); err != nil {
			return fmt.Errorf("record metrics: %w", err)
		}
	}

	entry.Info("bulk order created processed")
	return nil
}

// reconcile moves a submission still PENDING to SUBMITTED. This happens when
// the API created the order but could not finish its own bookkeeping.
func (p *Processor) reconcile(ctx context.Context, msg aws.BulkOrderCreated, entry *logrus.Entry) error {
	if p.subs == nil || msg.CorrelationID == "" {
		return nil
	}

	sub, err := p.subs.Get(ctx, msg.CorrelationID)
	if err != nil {
		return fmt.Errorf("failed to fetch submission: %w", err)
	}
	if sub == nil {
		entry.Warn("no submission recorded for event")
		return nil
	}

	switch sub.Status {
	case submissions.StatusSubmitted:
		if sub.OrderID != msg.OrderID {
			entry.WithField("recorded_order_id", sub.OrderID).Warn("submission recorded with a different order id")
		}
		return nil
	case submissions.StatusPending:
		err := p.subs.MarkSubmitted(ctx, msg.CorrelationID, msg.OrderID)
		if errors.Is(err, submissions.ErrStatusMismatch) {
			// the API or another delivery got there first
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to mark submitted: %w", err)
		}
		entry.Info("submission reconciled to SUBMITTED")
		return nil
	case submissions.StatusFailed:
		entry.WithField("note", sub.Note).Warn("order created for a submission recorded as FAILED")
		return nil
	default:
		return fmt.Errorf("unexpected submission status %q", sub.Status)
	}
}

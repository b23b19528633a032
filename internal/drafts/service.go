package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/aws"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/backend"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/hampers"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/recipients"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/submissions"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

const moduleName = "drafts"

// OrderCreator is the order-creation endpoint.
type OrderCreator interface {
	CreateBulkOrder(ctx context.Context, order orders.BulkOrder) (backend.CreateResult, error)
}

// Ledger deduplicates submissions by idempotency key.
type Ledger interface {
	Begin(ctx context.Context, key, draftID string, order orders.BulkOrder) (string, error)
	Finish(ctx context.Context, key, orderID string) error
	Fail(ctx context.Context, key string, cause error) error
}

// EventPublisher announces created bulk orders.
type EventPublisher interface {
	PublishBulkOrderCreated(ctx context.Context, msg aws.BulkOrderCreated) error
}

// ServiceConfig groups dependencies for the draft service. Ledger and Events are optional.
type ServiceConfig struct {
	Repository Repository
	Guard      Guard
	Backend    OrderCreator
	Ledger     Ledger
	Events     EventPublisher
	Validator  *validatorv10.Validate
	Logger     *logrus.Logger
}

// Service owns every draft mutation. Each mutation returns the re-evaluated gate.
type Service struct {
	repo    Repository
	guard   Guard
	backend OrderCreator
	ledger  Ledger
	events  EventPublisher
	v       *validatorv10.Validate
	log     *logrus.Logger
	nowFunc func() time.Time
	newID   func() string
}

func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:    cfg.Repository,
		guard:   cfg.Guard,
		backend: cfg.Backend,
		ledger:  cfg.Ledger,
		events:  cfg.Events,
		v:       cfg.Validator,
		log:     cfg.Logger,
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
	if s.guard == nil {
		s.guard = NewLocalGuard()
	}
	if s.v == nil {
		s.v = validation.New()
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// View is a draft together with its gate.
type View struct {
	Draft       *Draft                 `json:"draft"`
	Gate        Gate                   `json:"gate"`
	PayeeErrors validation.FieldErrors `json:"payeeErrors,omitempty"`
	Submitting  bool                   `json:"submitting"`
}

// Preview is what the payer would submit right now.
type Preview struct {
	Gate        Gate                `json:"gate"`
	SalesOrders []orders.SalesOrder `json:"salesOrders"`
	Amount      decimal.Decimal     `json:"amount"`
	Messages    []string            `json:"messages"`
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	OrderID        string           `json:"orderId"`
	IdempotencyKey string           `json:"idempotencyKey"`
	Replayed       bool             `json:"replayed"`
	BulkOrder      orders.BulkOrder `json:"bulkOrder"`
}

func (s *Service) Create(ctx context.Context) (View, error) {
	d := newDraft(s.newID(), s.nowFunc().UTC())
	if err := s.repo.Create(ctx, d); err != nil {
		return View{}, err
	}
	s.log.WithField("draft_id", d.ID).Info("draft created")
	return s.view(ctx, d)
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.guard.InFlight(ctx, id) {
		return ErrSubmissionInFlight
	}
	return s.repo.Delete(ctx, id)
}

// Gate evaluates the gate of a stored draft.
func (s *Service) Gate(ctx context.Context, id string) (Gate, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return Gate{}, err
	}
	return Evaluate(s.v, d)
}

// UpsertHamper adds h to the draft catalog or replaces the hamper with the same id.
func (s *Service) UpsertHamper(ctx context.Context, id string, h hampers.Hamper) (View, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		return d.Catalog.Upsert(h)
	})
}

// RemoveHamper deletes a hamper. Recipients pointing at it keep the id and
// block submission until they are fixed.
func (s *Service) RemoveHamper(ctx context.Context, id, hamperID string) (View, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		if !d.Catalog.Remove(hamperID) {
			return ErrHamperNotFound
		}
		return nil
	})
}

// AddRecipient appends a row. It is refused while the catalog has no valid hamper.
func (s *Service) AddRecipient(ctx context.Context, id string, item recipients.Item) (int, View, error) {
	index := -1
	v, err := s.mutate(ctx, id, func(d *Draft) error {
		if !d.Catalog.HasValid() {
			g, err := Evaluate(s.v, d)
			if err != nil {
				return err
			}
			return &GateError{Action: ActionAddRecipient, Problems: g.Problems}
		}
		index = d.Recipients.Add(item)
		return nil
	})
	if err != nil {
		return -1, View{}, err
	}
	return index, v, nil
}

func (s *Service) UpdateRecipient(ctx context.Context, id string, index int, item recipients.Item) (View, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		return d.Recipients.Update(index, item)
	})
}

func (s *Service) RemoveRecipient(ctx context.Context, id string, index int) (View, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		return d.Recipients.RemoveAt(index)
	})
}

// SetPayee stores the payee as entered. It is validated when the draft is submitted.
func (s *Service) SetPayee(ctx context.Context, id string, p orders.Payee) (View, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.Payee = p
		return nil
	})
}

func (s *Service) SetMessageTemplate(ctx context.Context, id, template string) (View, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.MessageTemplate = template
		return nil
	})
}

// Preview assembles the sales orders that would be submitted now and renders
// the recipient messages. Orders are only assembled when submission is enabled.
func (s *Service) Preview(ctx context.Context, id string) (Preview, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return Preview{}, err
	}
	g, err := Evaluate(s.v, d)
	if err != nil {
		return Preview{}, err
	}

	items := d.Recipients.Items()
	p := Preview{
		Gate:        g,
		SalesOrders: []orders.SalesOrder{},
		Amount:      decimal.Zero,
		Messages:    orders.RenderMessages(d.MessageTemplate, items, d.Catalog),
	}
	if p.Messages == nil {
		p.Messages = []string{}
	}
	if !g.CanSubmit {
		return p, nil
	}

	sos, err := orders.Assemble(items, d.Catalog)
	if err != nil {
		return Preview{}, err
	}
	p.SalesOrders = sos
	for _, so := range sos {
		p.Amount = p.Amount.Add(so.Amount)
	}
	return p, nil
}

// Cancel clears every recipient row. The payer must confirm, and the list must
// not be empty.
func (s *Service) Cancel(ctx context.Context, id string, confirmed bool) (View, error) {
	if s.guard.InFlight(ctx, id) {
		return View{}, ErrSubmissionInFlight
	}
	v, err := s.mutate(ctx, id, func(d *Draft) error {
		if d.Recipients.Len() == 0 {
			g, err := Evaluate(s.v, d)
			if err != nil {
				return err
			}
			return &GateError{Action: ActionCancel, Problems: g.Problems}
		}
		if !confirmed {
			return ErrConfirmationRequired
		}
		d.Recipients.Reset()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.log.WithField("draft_id", id).Info("recipient list cleared")
	return v, nil
}

// Submit assembles the draft into a bulk order and sends it to the
// order-creation endpoint. An empty key gets a fresh one, so only callers that
// resend the same key are deduplicated. Failures leave the draft unchanged and
// still report the key in the result.
func (s *Service) Submit(ctx context.Context, id, key string) (SubmitResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = s.newID()
	}
	// the key goes back to the caller on failure too, so a retry can reuse it
	failed := SubmitResult{IdempotencyKey: key}

	release, err := s.guard.Acquire(ctx, id)
	if err != nil {
		return failed, err
	}
	defer release()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return failed, err
	}
	g, err := Evaluate(s.v, d)
	if err != nil {
		return failed, err
	}
	if !g.CanSubmit {
		return failed, &GateError{Action: ActionSubmit, Problems: g.Problems}
	}
	if err := validation.Struct(s.v, d.Payee); err != nil {
		return failed, err
	}

	// prices are fixed by this snapshot, later catalog edits do not reach the order
	snapshot := d.Catalog.Clone()
	sos, err := orders.Assemble(d.Recipients.Items(), snapshot)
	if err != nil {
		return failed, err
	}
	bo, err := orders.Build(d.Payee, sos)
	if err != nil {
		return failed, err
	}

	fields := logrus.Fields{"draft_id": id, "idempotency_key": key}

	if s.ledger != nil {
		replayed, err := s.ledger.Begin(ctx, key, id, bo)
		if err != nil {
			if errors.Is(err, submissions.ErrInProgress) {
				return failed, ErrSubmissionInFlight
			}
			if errors.Is(err, submissions.ErrKeyReused) {
				return failed, err
			}
			logging.LogError(s.log, moduleName, "Submit", "ledger begin", fields, err)
			return failed, err
		}
		if replayed != "" {
			s.recordOrderID(ctx, id, replayed)
			return SubmitResult{OrderID: replayed, IdempotencyKey: key, Replayed: true, BulkOrder: bo}, nil
		}
	}

	res, err := s.backend.CreateBulkOrder(ctx, bo)
	// bookkeeping must land even when the caller has gone away
	bg := context.WithoutCancel(ctx)
	if err != nil {
		logging.LogError(s.log, moduleName, "Submit", "create bulk order", fields, err)
		if s.ledger != nil {
			if lerr := s.ledger.Fail(bg, key, err); lerr != nil {
				logging.LogError(s.log, moduleName, "Submit", "ledger fail", fields, lerr)
			}
		}
		var te *backend.TransportError
		if errors.As(err, &te) {
			return failed, &SubmissionTransportError{Err: err}
		}
		return failed, fmt.Errorf("create bulk order: %w", err)
	}

	if s.ledger != nil {
		if err := s.ledger.Finish(bg, key, res.OrderID); err != nil {
			logging.LogError(s.log, moduleName, "Submit", "ledger finish", fields, err)
		}
	}
	s.recordOrderID(bg, id, res.OrderID)
	s.publish(bg, id, key, res.OrderID, bo)

	s.log.WithFields(fields).WithField("order_id", res.OrderID).Info("bulk order submitted")
	return SubmitResult{OrderID: res.OrderID, IdempotencyKey: key, BulkOrder: bo}, nil
}

func (s *Service) recordOrderID(ctx context.Context, id, orderID string) {
	_, err := s.repo.Update(ctx, id, func(d *Draft) error {
		d.CurrentOrderID = orderID
		d.UpdatedAt = s.nowFunc().UTC()
		return nil
	})
	if err != nil {
		logging.LogError(s.log, moduleName, "recordOrderID", "update draft", logrus.Fields{"draft_id": id, "order_id": orderID}, err)
	}
}

func (s *Service) publish(ctx context.Context, draftID, key, orderID string, bo orders.BulkOrder) {
	if s.events == nil {
		return
	}
	msg := aws.BulkOrderCreated{
		OrderID:       orderID,
		DraftID:       draftID,
		PayeeEmail:    bo.PayeeEmail,
		PaymentMode:   string(bo.PaymentMode),
		Amount:        bo.Amount.String(),
		Recipients:    len(bo.SalesOrders),
		CorrelationID: key,
	}
	if err := s.events.PublishBulkOrderCreated(ctx, msg); err != nil {
		logging.LogError(s.log, moduleName, "publish", "send BulkOrderCreated", msg, err)
	}
}

func (s *Service) mutate(ctx context.Context, id string, fn func(d *Draft) error) (View, error) {
	d, err := s.repo.Update(ctx, id, func(d *Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		d.UpdatedAt = s.nowFunc().UTC()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, d)
}

func (s *Service) view(ctx context.Context, d *Draft) (View, error) {
	g, err := Evaluate(s.v, d)
	if err != nil {
		return View{}, err
	}
	v := View{Draft: d, Gate: g, Submitting: s.guard.InFlight(ctx, d.ID)}
	if err := validation.Struct(s.v, d.Payee); err != nil {
		var fe validation.FieldErrors
		if !errors.As(err, &fe) {
			return View{}, err
		}
		v.PayeeErrors = fe
	}
	return v, nil
}

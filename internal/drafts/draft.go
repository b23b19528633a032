package drafts

import (
	"time"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/hampers"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/recipients"
)

// Draft is one payer's in-progress bulk order. It lives only for the session
// and is never persisted beyond the repository TTL.
type Draft struct {
	ID              string           `json:"id"`
	Catalog         *hampers.Catalog `json:"hampers"`
	Recipients      *recipients.List `json:"recipients"`
	Payee           orders.Payee     `json:"payee"`
	MessageTemplate string           `json:"messageTemplate"`
	CurrentOrderID  string           `json:"currentOrderId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func newDraft(id string, now time.Time) *Draft {
	return &Draft{
		ID:         id,
		Catalog:    &hampers.Catalog{},
		Recipients: recipients.NewList(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// clone returns a deep copy so stored drafts never share state with callers.
func (d *Draft) clone() *Draft {
	cp := *d
	if d.Catalog != nil {
		cp.Catalog = d.Catalog.Clone()
	} else {
		cp.Catalog = &hampers.Catalog{}
	}
	if d.Recipients != nil {
		cp.Recipients = recipients.NewList(d.Recipients.Items()...)
	} else {
		cp.Recipients = recipients.NewList()
	}
	return &cp
}

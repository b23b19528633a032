package recipients

import (
	"encoding/json"
	"errors"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

var ErrIndexOutOfRange = errors.New("recipient index out of range")

// Item is one recipient row of a bulk order. Rows may be incomplete while
// the payer is editing; Validate reports what is missing.
type Item struct {
	CustomerName      string `json:"customerName" validate:"required,notblank"`
	CustomerContactNo string `json:"customerContactNo" validate:"required,dialable"`
	HamperID          string `json:"hamperId" validate:"required,notblank"`
	Quantity          int    `json:"quantity" validate:"required,min=1"`
	CustomerAddress   string `json:"customerAddress" validate:"required,notblank"`
	PostalCode        string `json:"postalCode" validate:"required,notblank"`
}

// RowErrors are the field errors of one row.
type RowErrors struct {
	Row    int                    `json:"row"`
	Fields validation.FieldErrors `json:"fields"`
}

// List is the ordered, resizable list of recipient rows.
type List struct {
	items []Item
}

func NewList(items ...Item) *List {
	return &List{items: append([]Item(nil), items...)}
}

// Add appends item and returns its index.
func (l *List) Add(item Item) int {
	l.items = append(l.items, item)
	return len(l.items) - 1
}

func (l *List) Update(i int, item Item) error {
	if i < 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	l.items[i] = item
	return nil
}

// RemoveAt deletes the row at i; later rows shift down by one.
func (l *List) RemoveAt(i int) error {
	if i < 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return nil
}

func (l *List) Reset() { l.items = nil }

func (l *List) Len() int { return len(l.items) }

// Items returns a copy of the rows in entry order.
func (l *List) Items() []Item {
	return append([]Item(nil), l.items...)
}

// Validate checks every row against its field rules and returns the failing rows.
func (l *List) Validate(v *validatorv10.Validate) ([]RowErrors, error) {
	var out []RowErrors
	for i, item := range l.items {
		err := validation.Struct(v, item)
		if err == nil {
			continue
		}
		var fe validation.FieldErrors
		if !errors.As(err, &fe) {
			return nil, err
		}
		out = append(out, RowErrors{Row: i, Fields: fe})
	}
	return out, nil
}

func (l *List) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l *List) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &l.items)
}

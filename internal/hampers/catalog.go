package hampers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingID     = errors.New("hamper id is required")
	ErrNegativePrice = errors.New("hamper price must not be negative")
)

// Content is one product packed into a hamper.
type Content struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// Hamper is a product offered in a bulk order.
type Hamper struct {
	ID         string          `json:"id"`
	HamperName string          `json:"hamperName"`
	Price      decimal.Decimal `json:"price"`
	Contents   []Content       `json:"contents,omitempty"`
}

// Valid reports whether the hamper can be referenced by a recipient.
func (h Hamper) Valid() bool {
	return strings.TrimSpace(h.HamperName) != "" && !h.Price.IsNegative()
}

func (h Hamper) clone() Hamper {
	if h.Contents != nil {
		h.Contents = append([]Content(nil), h.Contents...)
	}
	return h
}

// Catalog holds the hampers of one draft keyed by id, in insertion order.
// The zero value is ready to use, and a nil *Catalog reads as empty.
type Catalog struct {
	order []string
	byID  map[string]Hamper
}

// NewCatalog returns a catalog seeded with hs. Later duplicates replace earlier ones.
func NewCatalog(hs ...Hamper) (*Catalog, error) {
	c := &Catalog{}
	for _, h := range hs {
		if err := c.Upsert(h); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Upsert inserts h, or replaces the hamper with the same id in place.
func (c *Catalog) Upsert(h Hamper) error {
	h.ID = strings.TrimSpace(h.ID)
	if h.ID == "" {
		return ErrMissingID
	}
	if h.Price.IsNegative() {
		return ErrNegativePrice
	}
	if c.byID == nil {
		c.byID = make(map[string]Hamper)
	}
	if _, exists := c.byID[h.ID]; !exists {
		c.order = append(c.order, h.ID)
	}
	c.byID[h.ID] = h.clone()
	return nil
}

// Remove deletes the hamper with the given id. Recipients referencing it are
// left dangling; the gate reports them.
func (c *Catalog) Remove(id string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Catalog) Get(id string) (Hamper, bool) {
	if c == nil {
		return Hamper{}, false
	}
	h, ok := c.byID[id]
	if !ok {
		return Hamper{}, false
	}
	return h.clone(), true
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Hampers returns the hampers in insertion order.
func (c *Catalog) Hampers() []Hamper {
	if c == nil {
		return []Hamper{}
	}
	out := make([]Hamper, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].clone())
	}
	return out
}

// HasValid reports whether at least one hamper passes Valid.
func (c *Catalog) HasValid() bool {
	if c == nil {
		return false
	}
	for _, id := range c.order {
		if c.byID[id].Valid() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, used to snapshot prices before submission.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return &Catalog{}
	}
	out := &Catalog{
		order: append([]string(nil), c.order...),
		byID:  make(map[string]Hamper, len(c.byID)),
	}
	for id, h := range c.byID {
		out.byID[id] = h.clone()
	}
	return out
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hampers())
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var hs []Hamper
	if err := json.Unmarshal(data, &hs); err != nil {
		return err
	}
	*c = Catalog{}
	for _, h := range hs {
		if err := c.Upsert(h); err != nil {
			return err
		}
	}
	return nil
}

package orders

import (
	"strconv"
	"strings"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/hampers"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/recipients"
)

// Assemble turns recipient rows into one priced sales order per row, in row
// order. Prices are read from catalog at call time, so callers pass a snapshot
// when the live catalog may change. Any unresolved hamper fails the whole call.
func Assemble(items []recipients.Item, catalog *hampers.Catalog) ([]SalesOrder, error) {
	out := make([]SalesOrder, 0, len(items))
	for row, item := range items {
		h, ok := catalog.Get(item.HamperID)
		if !ok {
			return nil, &UnknownHamperReferenceError{Row: row, HamperID: item.HamperID}
		}
		if item.Quantity < 1 {
			return nil, &InvalidQuantityError{Row: row, Quantity: item.Quantity}
		}

		so := SalesOrder{
			CustomerName:      strings.TrimSpace(item.CustomerName),
			CustomerContactNo: strings.TrimSpace(item.CustomerContactNo),
			CustomerAddress:   strings.TrimSpace(item.CustomerAddress),
			PostalCode:        strings.TrimSpace(item.PostalCode),
			SalesOrderItems: []SalesOrderItem{{
				ProductName: h.HamperName,
				Quantity:    item.Quantity,
				UnitPrice:   h.Price,
			}},
		}
		so.Amount = so.Total()
		out = append(out, so)
	}
	return out, nil
}

// RenderMessages fills the message template once per recipient row.
// Supported placeholders: {customerName}, {hamperName}, {quantity}.
// Rows whose hamper is missing render with an empty hamper name.
func RenderMessages(template string, items []recipients.Item, catalog *hampers.Catalog) []string {
	if strings.TrimSpace(template) == "" {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if h, ok := catalog.Get(item.HamperID); ok {
			name = h.HamperName
		}
		r := strings.NewReplacer(
			"{customerName}", strings.TrimSpace(item.CustomerName),
			"{hamperName}", name,
			"{quantity}", strconv.Itoa(item.Quantity),
		)
		out = append(out, r.Replace(template))
	}
	return out
}

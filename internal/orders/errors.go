package orders

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySalesOrders   = errors.New("bulk order must contain at least one sales order")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	ErrAmountMismatch     = errors.New("bulk order amount does not match its sales orders")
)

// UnknownHamperReferenceError aborts assembly when a recipient row points to a
// hamper that is not in the catalog.
type UnknownHamperReferenceError struct {
	Row      int
	HamperID string
}

func (e *UnknownHamperReferenceError) Error() string {
	return fmt.Sprintf("recipient row %d references unknown hamper %q", e.Row, e.HamperID)
}

// InvalidQuantityError aborts assembly when a row reaches it with quantity < 1.
type InvalidQuantityError struct {
	Row      int
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("recipient row %d has invalid quantity %d", e.Row, e.Quantity)
}

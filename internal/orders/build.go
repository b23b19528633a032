package orders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Build wraps the assembled sales orders with the payee details. The amount is
// recomputed from the items rather than trusted from each SalesOrder.Amount.
func Build(payee Payee, salesOrders []SalesOrder) (BulkOrder, error) {
	if len(salesOrders) == 0 {
		return BulkOrder{}, ErrEmptySalesOrders
	}
	if !payee.PaymentMode.Valid() {
		return BulkOrder{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMode, payee.PaymentMode)
	}

	sos := make([]SalesOrder, len(salesOrders))
	amount := decimal.Zero
	for i, so := range salesOrders {
		so.SalesOrderItems = append([]SalesOrderItem(nil), so.SalesOrderItems...)
		so.Amount = so.Total()
		amount = amount.Add(so.Amount)
		sos[i] = so
	}

	bo := BulkOrder{
		Amount:          amount,
		PaymentMode:     payee.PaymentMode,
		PayeeName:       strings.TrimSpace(payee.PayeeName),
		PayeeEmail:      strings.TrimSpace(payee.PayeeEmail),
		PayeeContactNo:  strings.TrimSpace(payee.PayeeContactNo),
		BulkOrderStatus: StatusCreated,
		SalesOrders:     sos,
	}
	if remarks := strings.TrimSpace(payee.PayeeRemarks); remarks != "" {
		bo.PayeeRemarks = &remarks
	}
	return bo, nil
}

// Verify checks that every sales order amount matches its items and that the
// bulk amount is their sum.
func (b BulkOrder) Verify() error {
	if len(b.SalesOrders) == 0 {
		return ErrEmptySalesOrders
	}
	sum := decimal.Zero
	for i, so := range b.SalesOrders {
		if !so.Amount.Equal(so.Total()) {
			return fmt.Errorf("%w: sales order %d amount %s != items %s", ErrAmountMismatch, i, so.Amount, so.Total())
		}
		sum = sum.Add(so.Amount)
	}
	if !b.Amount.Equal(sum) {
		return fmt.Errorf("%w: amount %s != sum %s", ErrAmountMismatch, b.Amount, sum)
	}
	return nil
}

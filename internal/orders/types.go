package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentMode is how the payee settles the bulk order.
type PaymentMode string

const (
	PaymentCash         PaymentMode = "CASH"
	PaymentCheque       PaymentMode = "CHEQUE"
	PaymentBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentPayNow       PaymentMode = "PAYNOW"
)

var paymentModes = []PaymentMode{PaymentCash, PaymentCheque, PaymentBankTransfer, PaymentPayNow}

// PaymentModes lists the accepted payment modes in display order.
func PaymentModes() []PaymentMode {
	return append([]PaymentMode(nil), paymentModes...)
}

func (m PaymentMode) Valid() bool {
	for _, pm := range paymentModes {
		if m == pm {
			return true
		}
	}
	return false
}

// Values reports the accepted modes for validation messages.
func (m PaymentMode) Values() []string {
	out := make([]string, len(paymentModes))
	for i, pm := range paymentModes {
		out[i] = string(pm)
	}
	return out
}

// BulkOrderStatus is the lifecycle state of a bulk order. Only StatusCreated
// is ever set by this service; every other value comes from the backend.
type BulkOrderStatus string

const (
	StatusCreated        BulkOrderStatus = "CREATED"
	StatusPaymentPending BulkOrderStatus = "PAYMENT_PENDING"
	StatusPaid           BulkOrderStatus = "PAID"
	StatusCancelled      BulkOrderStatus = "CANCELLED"
	StatusFulfilled      BulkOrderStatus = "FULFILLED"
)

// SalesOrderItem is one product line within a sales order.
type SalesOrderItem struct {
	ID          string          `json:"id,omitempty"` // backend assigned
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Subtotal is quantity × unit price.
func (i SalesOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SalesOrder is the sub-order shipped to a single recipient.
type SalesOrder struct {
	OrderID           string           `json:"orderId,omitempty"` // backend assigned
	CustomerName      string           `json:"customerName"`
	CustomerContactNo string           `json:"customerContactNo"`
	CustomerAddress   string           `json:"customerAddress"`
	PostalCode        string           `json:"postalCode"`
	Amount            decimal.Decimal  `json:"amount"`
	SalesOrderItems   []SalesOrderItem `json:"salesOrderItems"`
}

// Total recomputes the amount from the items.
func (so SalesOrder) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range so.SalesOrderItems {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// Payee is the single party paying for the whole bulk order.
type Payee struct {
	PayeeName      string      `json:"payeeName" validate:"required,notblank"`
	PayeeEmail     string      `json:"payeeEmail" validate:"required,email"`
	PayeeContactNo string      `json:"payeeContactNo" validate:"required,dialable"`
	PayeeCompany   string      `json:"payeeCompany,omitempty"`
	PaymentMode    PaymentMode `json:"paymentMode" validate:"required,enum"`
	PayeeRemarks   string      `json:"payeeRemarks,omitempty"`
}

// BulkOrder is the aggregate submitted to the order-creation endpoint.
type BulkOrder struct {
	OrderID         string          `json:"orderId,omitempty"`     // backend assigned
	CreatedTime     *time.Time      `json:"createdTime,omitempty"` // backend assigned
	Amount          decimal.Decimal `json:"amount"`
	PaymentMode     PaymentMode     `json:"paymentMode"`
	PayeeName       string          `json:"payeeName"`
	PayeeEmail      string          `json:"payeeEmail"`
	PayeeContactNo  string          `json:"payeeContactNo"`
	PayeeRemarks    *string         `json:"payeeRemarks,omitempty"`
	BulkOrderStatus BulkOrderStatus `json:"bulkOrderStatus"`
	SalesOrders     []SalesOrder    `json:"salesOrders"`
}

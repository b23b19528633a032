package validation

import "github.com/shopspring/decimal"

// HamperContent is one product line inside a hamper form.
type HamperContent struct {
	ProductName string `json:"productName" validate:"required,notblank"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

// HamperRequest is the payload for adding or replacing a hamper in a draft.
// The name may be blank while the payer is still editing.
type HamperRequest struct {
	HamperName string           `json:"hamperName"`
	Price      *decimal.Decimal `json:"price" validate:"required"`
	Contents   []HamperContent  `json:"contents,omitempty" validate:"omitempty,dive"`
}

// MessageTemplateRequest is the payload for PUT /drafts/:id/message-template.
type MessageTemplateRequest struct {
	Template string `json:"template"`
}

// CancelRequest carries the explicit confirmation cancellation requires.
type CancelRequest struct {
	Confirm bool `json:"confirm"`
}

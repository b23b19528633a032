package drafts

import (
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

// Problem codes reported by the gate.
const (
	ProblemEmptyCatalog           = "EMPTY_CATALOG"
	ProblemEmptyRecipientList     = "EMPTY_RECIPIENT_LIST"
	ProblemFieldValidation        = "FIELD_VALIDATION"
	ProblemUnknownHamperReference = "UNKNOWN_HAMPER_REFERENCE"
	ProblemInvalidHamper          = "INVALID_HAMPER"
)

// Problem explains why an action is disabled. Row is -1 for draft-wide problems.
type Problem struct {
	Code     string                 `json:"code"`
	Row      int                    `json:"row"`
	HamperID string                 `json:"hamperId,omitempty"`
	Fields   validation.FieldErrors `json:"fields,omitempty"`
	Message  string                 `json:"message"`
}

// Gate tells which draft actions are currently enabled.
type Gate struct {
	CanAddRecipient bool      `json:"canAddRecipient"`
	CanSubmit       bool      `json:"canSubmit"`
	CanCancel       bool      `json:"canCancel"`
	Problems        []Problem `json:"problems"`
}

// Evaluate computes the gate for d. It never mutates d.
func Evaluate(v *validatorv10.Validate, d *Draft) (Gate, error) {
	g := Gate{Problems: []Problem{}}

	g.CanAddRecipient = d.Catalog.HasValid()
	if !g.CanAddRecipient {
		g.Problems = append(g.Problems, Problem{
			Code:    ProblemEmptyCatalog,
			Row:     -1,
			Message: "add at least one hamper with a name and a price",
		})
	}

	n := d.Recipients.Len()
	g.CanCancel = n > 0
	if n == 0 {
		g.Problems = append(g.Problems, Problem{
			Code:    ProblemEmptyRecipientList,
			Row:     -1,
			Message: "add at least one recipient",
		})
		return g, nil
	}

	rowErrs, err := d.Recipients.Validate(v)
	if err != nil {
		return Gate{}, err
	}
	for _, re := range rowErrs {
		g.Problems = append(g.Problems, Problem{
			Code:    ProblemFieldValidation,
			Row:     re.Row,
			Fields:  re.Fields,
			Message: re.Fields.Error(),
		})
	}

	for row, item := range d.Recipients.Items() {
		if strings.TrimSpace(item.HamperID) == "" {
			// already reported as a missing field
			continue
		}
		h, ok := d.Catalog.Get(item.HamperID)
		switch {
		case !ok:
			g.Problems = append(g.Problems, Problem{
				Code:     ProblemUnknownHamperReference,
				Row:      row,
				HamperID: item.HamperID,
				Message:  fmt.Sprintf("hamper %q is no longer in this order", item.HamperID),
			})
		case !h.Valid():
			g.Problems = append(g.Problems, Problem{
				Code:     ProblemInvalidHamper,
				Row:      row,
				HamperID: item.HamperID,
				Message:  fmt.Sprintf("hamper %q needs a name and a non-negative price", item.HamperID),
			})
		}
	}

	g.CanSubmit = true
	for _, p := range g.Problems {
		if p.Code != ProblemEmptyCatalog {
			g.CanSubmit = false
			break
		}
	}
	return g, nil
}

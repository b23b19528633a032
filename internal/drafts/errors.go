package drafts

import (
	"errors"
	"fmt"
)

// Gate actions.
const (
	ActionAddRecipient = "add_recipient"
	ActionSubmit       = "submit"
	ActionCancel       = "cancel"
)

var (
	ErrConfirmationRequired = errors.New("cancellation must be confirmed")
	ErrHamperNotFound       = errors.New("hamper not found")
)

// GateError is returned when an action is attempted while the gate disables it.
type GateError struct {
	Action   string
	Problems []Problem
}

func (e *GateError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("%s is not allowed", e.Action)
	}
	return fmt.Sprintf("%s is not allowed: %s", e.Action, e.Problems[0].Message)
}

// SubmissionTransportError wraps a failed call to the order-creation endpoint.
// The draft is left as it was and the payer may submit again.
type SubmissionTransportError struct {
	Err error
}

func (e *SubmissionTransportError) Error() string {
	return "submission failed: " + e.Err.Error()
}

func (e *SubmissionTransportError) Unwrap() error { return e.Err }

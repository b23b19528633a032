package validation

import (
	"errors"
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// FieldError is a single form field failing one of its rules.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// FieldErrors is returned when a form fails validation. It never leaves the form
// it was produced for.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return "field validation failed: " + strings.Join(parts, "; ")
}

// Struct validates s and converts validator errors to FieldErrors.
func Struct(v *validatorv10.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	return FromValidator(err)
}

// FromValidator converts a validator error into FieldErrors. Other errors are
// returned unchanged.
func FromValidator(err error) error {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(FieldErrors, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "dialable":
		return "must be a dial-able contact number"
	case "enum":
		if e, ok := fe.Value().(Enum); ok {
			return "must be one of " + strings.Join(e.Values(), ", ")
		}
		return "is not an accepted value"
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

package recipients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

// Decode parses a loosely typed recipient form row into an Item.
// Contact numbers and postal codes may arrive as JSON numbers; they are kept
// as their literal text. Quantity may be a number or a numeric string.
// Values of the wrong JSON type are reported as FieldErrors with rule "type".
// Presence rules are not checked here; see List.Validate.
func Decode(raw []byte) (Item, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Item{}, fmt.Errorf("decode recipient: %w", err)
	}

	var (
		item Item
		errs validation.FieldErrors
	)
	text := func(key string, dst *string, allowNumber bool) {
		s, ok := textValue(fields[key], allowNumber)
		if !ok {
			errs = append(errs, typeError(key, "must be a string"))
			return
		}
		*dst = s
	}

	text("customerName", &item.CustomerName, false)
	text("customerContactNo", &item.CustomerContactNo, true)
	text("hamperId", &item.HamperID, false)
	text("customerAddress", &item.CustomerAddress, false)
	text("postalCode", &item.PostalCode, true)

	qty, ok := intValue(fields["quantity"])
	if !ok {
		errs = append(errs, typeError("quantity", "must be a whole number"))
	} else {
		item.Quantity = qty
	}

	if len(errs) > 0 {
		return Item{}, errs
	}
	return item, nil
}

func typeError(field, msg string) validation.FieldError {
	return validation.FieldError{Field: field, Rule: "type", Message: msg}
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func textValue(raw json.RawMessage, allowNumber bool) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	if !allowNumber {
		return "", false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

func intValue(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, true
	}
	var lit string
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		lit = n.String()
	} else if err := json.Unmarshal(raw, &lit); err != nil {
		return 0, false
	}
	lit = strings.TrimSpace(lit)
	if lit == "" {
		return 0, true
	}
	v, err := strconv.Atoi(lit)
	if err != nil {
		return 0, false
	}
	return v, true
}

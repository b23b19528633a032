package validation

import (
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// dial-able numbers: optional leading +, digits with optional spaces or dashes.
var dialableRe = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)

// Enum is a string type with a closed set of values, such as a payment mode.
// Fields tagged "enum" must implement it.
type Enum interface {
	Valid() bool
	Values() []string
}

// New returns a configured validator with the custom tags used by recipient
// and payee forms registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// report json names so field errors line up with the form keys.
	v.RegisterTagNameFunc(jsonFieldName)

	_ = v.RegisterValidation("dialable", dialable)
	_ = v.RegisterValidation("enum", enum)
	_ = v.RegisterValidation("notblank", notBlank)

	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func dialable(fl validatorv10.FieldLevel) bool {
	return dialableRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

func enum(fl validatorv10.FieldLevel) bool {
	e, ok := fl.Field().Interface().(Enum)
	return ok && e.Valid()
}

func notBlank(fl validatorv10.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Package validation holds the declarative rules for transaction and
// sign-in forms. Only the first failing rule is reported.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError names the offending field and the message shown next to it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("datestring", func(fl validator.FieldLevel) bool {
		_, _, err := ParseDate(fl.Field().String(), time.UTC)
		return err == nil
	})

	return v
}

// firstError runs the struct rules and converts the first failure using messages,
// keyed by "field" or "field.tag".
func firstError(rules any, messages map[string]string) error {
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fe.Field()
	msg, ok := messages[field+"."+fe.Tag()]
	if !ok {
		msg, ok = messages[field]
	}
	if !ok {
		msg = fe.Error()
	}
	return &FieldError{Field: field, Message: msg}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate parses the date formats clients send. Date-only values are
// midnight in loc; dateOnly reports whether s carried no time of day.
func ParseDate(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, errors.New("empty date")
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, errors.New("unrecognized date " + s)
}

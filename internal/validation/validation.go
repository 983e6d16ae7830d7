// Package validation checks request payloads and reports every failing field.
//
// Field names follow the json tags of the payload (nested fields are joined
// with a dot, e.g. "shippingInfo.zip_code"). The message for a field comes from
// its `msg` struct tag, falling back to a generic message per rule.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failing field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the aggregated result of a failed validation
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator wraps a go-playground validator configured for json field names
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct trims every string field of s in place and validates it. s must be a
// pointer to a struct. The returned error is of type Errors when the payload
// is invalid.
func (v *Validator) Struct(s any) error {
	rv := reflect.ValueOf(s)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("validation: expected non-nil pointer, got %T", s)
	}
	TrimStrings(s)

	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	root := rv.Elem().Type()
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   trimRoot(fe.Namespace()),
			Message: message(root, fe),
		})
	}
	return out
}

// trimRoot drops the leading struct name from a namespace
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(root reflect.Type, fe validator.FieldError) string {
	if sf, ok := lookupField(root, fe.StructNamespace()); ok {
		if msg := sf.Tag.Get("msg"); msg != "" {
			return msg
		}
	}

	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "number", "numeric":
		return field + " must be numeric"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}

// lookupField resolves a struct namespace such as "CheckoutRequest.ShippingInfo.ZipCode"
// to the struct field it names.
func lookupField(root reflect.Type, structNS string) (reflect.StructField, bool) {
	parts := strings.Split(structNS, ".")
	if len(parts) < 2 {
		return reflect.StructField{}, false
	}

	t := root
	var sf reflect.StructField
	for _, part := range parts[1:] {
		name, _, _ := strings.Cut(part, "[")
		for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return reflect.StructField{}, false
		}
		sf = f
		t = f.Type
	}
	return sf, true
}

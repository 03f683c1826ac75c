// Package form holds the editing state of pricing factors, pricing configurations and user
// accounts, and projects it into backend payloads
package form

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/amirphl/morevans-pricing/app/schema"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// checkField validates one raw input against its descriptor and returns the message to show,
// or "" when the value is acceptable. An empty optional input counts as absent.
func checkField(d schema.FieldDescriptor, raw string) string {
	if raw == "" {
		if d.Required {
			return d.Label + " is required"
		}
		return ""
	}

	rules := d.Rules()
	var err error
	if d.IsNumeric() {
		n, ok := parseNumber(raw)
		if !ok {
			return d.Label + " must be a number"
		}
		if d.Type == schema.FieldTypeInteger && n != math.Trunc(n) {
			return d.Label + " must be a whole number"
		}
		if rules != "" {
			err = validate.Var(n, rules)
		}
	} else if rules != "" {
		err = validate.Var(raw, rules)
	}
	if err == nil {
		return ""
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return fieldErrorMessage(d.Label, fieldErrors[0])
	}
	return d.Label + " is invalid"
}

func fieldErrorMessage(label string, err validator.FieldError) string {
	switch err.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", label, err.Param())
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(err.Param(), " ", ", ")
	default:
		return label + " is invalid"
	}
}

func copyErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

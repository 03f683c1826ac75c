package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/amirphl/morevans-pricing/app/schema"
	"github.com/amirphl/morevans-pricing/models"
)

// Project narrows factor form values to the payload for category: the base fields, plus the
// category's own fields that hold a non-empty value. Numeric-looking strings become numbers.
func Project(values FactorFormValues, category models.PricingFactorCategory) map[string]any {
	payload := map[string]any{
		"name":        values.Name,
		"description": values.Description,
		"is_active":   values.IsActive,
	}
	for _, key := range schema.Keys(category) {
		if v, ok := values.Fields[key]; ok && v != "" {
			payload[key] = v
		}
	}
	coerceNumeric(payload)

	// category is set after coercion so it always stays the raw key
	payload["category"] = string(category)
	return payload
}

// coerceNumeric replaces every string value that parses fully as a finite number.
func coerceNumeric(payload map[string]any) {
	for k, v := range payload {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if n, ok := parseNumber(s); ok {
			payload[k] = n
		}
	}
}

// parseNumber accepts decimal and exponent notation with surrounding blanks. Blank input,
// NaN and infinities are rejected.
func parseNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

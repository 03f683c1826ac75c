package models

import "slices"

// ActiveFactors maps a category to the ids of the factors a configuration includes.
type ActiveFactors map[PricingFactorCategory][]uint

// HasAny reports whether at least one category has a non-empty id set.
func (a ActiveFactors) HasAny() bool {
	for _, ids := range a {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

func (a ActiveFactors) Contains(category PricingFactorCategory, id uint) bool {
	return slices.Contains(a[category], id)
}

// Clone returns a deep copy; a nil receiver yields an empty map.
func (a ActiveFactors) Clone() ActiveFactors {
	out := make(ActiveFactors, len(a))
	for c, ids := range a {
		out[c] = slices.Clone(ids)
	}
	return out
}

// PricingConfiguration is a named bundle of base prices plus the selected factor ids.
// At most one configuration is default; the backend keeps that exclusive.
type PricingConfiguration struct {
	ID                      uint          `json:"id,omitempty"`
	Name                    string        `json:"name"`
	IsActive                bool          `json:"is_active"`
	IsDefault               bool          `json:"is_default"`
	BasePrice               Decimal       `json:"base_price"`
	BasePricePerMile        Decimal       `json:"base_price_per_mile"`
	BasePricePerKg          Decimal       `json:"base_price_per_kg"`
	BasePricePerCubicMeter  Decimal       `json:"base_price_per_cubic_meter"`
	BasePricePerHour        Decimal       `json:"base_price_per_hour"`
	MinPrice                Decimal       `json:"min_price"`
	MaxPriceMultiplier      Decimal       `json:"max_price_multiplier"`
	FuelSurchargePercentage Decimal       `json:"fuel_surcharge_percentage"`
	CarbonOffsetRate        Decimal       `json:"carbon_offset_rate"`
	ActiveFactors           ActiveFactors `json:"active_factors"`
}

// NumericValues returns the base price fields keyed by their wire name.
func (c *PricingConfiguration) NumericValues() map[string]float64 {
	return map[string]float64{
		"base_price":                 c.BasePrice.Float64(),
		"base_price_per_mile":        c.BasePricePerMile.Float64(),
		"base_price_per_kg":          c.BasePricePerKg.Float64(),
		"base_price_per_cubic_meter": c.BasePricePerCubicMeter.Float64(),
		"base_price_per_hour":        c.BasePricePerHour.Float64(),
		"min_price":                  c.MinPrice.Float64(),
		"max_price_multiplier":       c.MaxPriceMultiplier.Float64(),
		"fuel_surcharge_percentage":  c.FuelSurchargePercentage.Float64(),
		"carbon_offset_rate":         c.CarbonOffsetRate.Float64(),
	}
}

type PricingFactorFilter struct {
	Category *PricingFactorCategory `json:"category,omitempty"`
	IsActive *bool                  `json:"is_active,omitempty"`
}

// Package schema is the static registry of pricing factor category field sets
package schema

import (
	"slices"
	"strconv"
	"strings"

	"github.com/amirphl/morevans-pricing/models"
)

type FieldType string

const (
	FieldTypeNumber  FieldType = "number"
	FieldTypeInteger FieldType = "integer"
	FieldTypeText    FieldType = "text"
	FieldTypeChoice  FieldType = "choice"
)

// FieldDescriptor describes one form field. Min and Max are nil when unbounded.
type FieldDescriptor struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Default  string    `json:"default"`
}

func (d FieldDescriptor) IsNumeric() bool {
	return d.Type == FieldTypeNumber || d.Type == FieldTypeInteger
}

// Rules returns the validator tag checking a present value: bounds for numeric fields,
// oneof for choices. Presence itself is checked separately.
func (d FieldDescriptor) Rules() string {
	var rules []string
	if d.Min != nil {
		rules = append(rules, "gte="+formatBound(*d.Min))
	}
	if d.Max != nil {
		rules = append(rules, "lte="+formatBound(*d.Max))
	}
	if d.Type == FieldTypeChoice && len(d.Options) > 0 {
		rules = append(rules, "oneof="+strings.Join(d.Options, " "))
	}
	return strings.Join(rules, ",")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func bound(v float64) *float64 { return &v }

// rate fields are non-negative amounts.
func rate(key, label string) FieldDescriptor {
	return FieldDescriptor{Key: key, Label: label, Type: FieldTypeNumber, Required: true, Min: bound(0), Default: "0"}
}

// multiplier fields never discount below the base price.
func multiplier(key, label string) FieldDescriptor {
	return FieldDescriptor{Key: key, Label: label, Type: FieldTypeNumber, Required: true, Min: bound(1), Default: "1"}
}

func bounded(key, label string, lo, hi float64, def string) FieldDescriptor {
	return FieldDescriptor{Key: key, Label: label, Type: FieldTypeNumber, Required: true, Min: bound(lo), Max: bound(hi), Default: def}
}

func count(key, label string) FieldDescriptor {
	return FieldDescriptor{Key: key, Label: label, Type: FieldTypeInteger, Required: true, Min: bound(1), Default: "1"}
}

func choice(key, label string, options ...string) FieldDescriptor {
	return FieldDescriptor{Key: key, Label: label, Type: FieldTypeChoice, Required: true, Options: options, Default: options[0]}
}

func text(key, label, def string) FieldDescriptor {
	return FieldDescriptor{Key: key, Label: label, Type: FieldTypeText, Required: true, Default: def}
}

var categoryFields = map[models.PricingFactorCategory][]FieldDescriptor{
	models.CategoryDistance: {
		rate("base_rate_per_km", "Base rate per km"),
		rate("min_distance", "Minimum distance"),
		rate("max_distance", "Maximum distance"),
	},
	models.CategoryWeight: {
		rate("base_rate_per_kg", "Base rate per kg"),
		rate("min_weight", "Minimum weight"),
		rate("max_weight", "Maximum weight"),
	},
	models.CategoryTime: {
		multiplier("peak_hour_multiplier", "Peak hour multiplier"),
		multiplier("weekend_multiplier", "Weekend multiplier"),
		multiplier("holiday_multiplier", "Holiday multiplier"),
	},
	models.CategoryWeather: {
		multiplier("rain_multiplier", "Rain multiplier"),
		multiplier("snow_multiplier", "Snow multiplier"),
		multiplier("extreme_weather_multiplier", "Extreme weather multiplier"),
	},
	models.CategoryVehicleType: {
		choice("vehicle_type", "Vehicle type", "motorcycle", "car", "suv", "truck", "van"),
		rate("base_rate", "Base rate"),
		multiplier("capacity_multiplier", "Capacity multiplier"),
	},
	models.CategorySpecialRequirements: {
		multiplier("fragile_items_multiplier", "Fragile items multiplier"),
		rate("assembly_required_rate", "Assembly required rate"),
		rate("special_equipment_rate", "Special equipment rate"),
	},
	models.CategoryLocation: {
		text("city_name", "City name", "London"),
		bounded("zone_multiplier", "Zone multiplier", 0.8, 3.0, "1"),
		rate("congestion_charge", "Congestion charge"),
		rate("parking_fee", "Parking fee"),
	},
	models.CategoryServiceLevel: {
		choice("service_level", "Service level", "standard", "express", "premium"),
		multiplier("price_multiplier", "Price multiplier"),
	},
	models.CategoryStaffRequired: {
		rate("base_rate_per_staff", "Base rate per staff"),
		count("min_staff", "Minimum staff"),
		count("max_staff", "Maximum staff"),
	},
	models.CategoryPropertyType: {
		choice("property_type", "Property type", "house", "apartment", "office", "storage"),
		rate("base_rate", "Base rate"),
		rate("rate_per_room", "Rate per room"),
		bounded("elevator_discount", "Elevator discount", 0.5, 1.0, "1"),
		rate("floor_rate", "Floor rate"),
	},
	models.CategoryInsurance: {
		rate("base_rate", "Base rate"),
		bounded("value_percentage", "Value percentage", 0, 100, "0"),
		rate("min_premium", "Minimum premium"),
	},
	models.CategoryLoadingTime: {
		rate("base_rate_per_hour", "Base rate per hour"),
		rate("min_hours", "Minimum hours"),
		multiplier("overtime_multiplier", "Overtime multiplier"),
	},
}

var configurationFields = []FieldDescriptor{
	rate("base_price", "Base price"),
	rate("base_price_per_mile", "Base price per mile"),
	rate("base_price_per_kg", "Base price per kg"),
	rate("base_price_per_cubic_meter", "Base price per cubic meter"),
	rate("base_price_per_hour", "Base price per hour"),
	rate("min_price", "Minimum price"),
	multiplier("max_price_multiplier", "Maximum price multiplier"),
	rate("fuel_surcharge_percentage", "Fuel surcharge percentage"),
	rate("carbon_offset_rate", "Carbon offset rate"),
}

// Fields returns the ordered field set of c. Unknown categories yield an empty list.
func Fields(c models.PricingFactorCategory) []FieldDescriptor {
	return cloneFields(categoryFields[c])
}

// Defaults returns the initial values for a new factor of category c.
func Defaults(c models.PricingFactorCategory) map[string]string {
	return defaultsOf(categoryFields[c])
}

// Keys returns the field keys of c in registry order.
func Keys(c models.PricingFactorCategory) []string {
	fields := categoryFields[c]
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// BelongsTo reports whether key is part of the field set of c.
func BelongsTo(c models.PricingFactorCategory, key string) bool {
	return slices.Contains(Keys(c), key)
}

// AllKeys returns the union of every category's keys, first occurrence order.
func AllKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, c := range models.PricingFactorCategories {
		for _, k := range Keys(c) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func ConfigurationFields() []FieldDescriptor {
	return cloneFields(configurationFields)
}

func ConfigurationDefaults() map[string]string {
	return defaultsOf(configurationFields)
}

func defaultsOf(fields []FieldDescriptor) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Default
	}
	return out
}

func cloneFields(fields []FieldDescriptor) []FieldDescriptor {
	out := make([]FieldDescriptor, len(fields))
	for i, f := range fields {
		f.Options = slices.Clone(f.Options)
		out[i] = f
	}
	return out
}

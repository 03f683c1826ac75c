// Package models contains the domain types shared by the pricing console and the mock backend
package models

// PricingFactorCategory is the internal key of a pricing factor category.
type PricingFactorCategory string

const (
	CategoryDistance            PricingFactorCategory = "distance"
	CategoryWeight              PricingFactorCategory = "weight"
	CategoryTime                PricingFactorCategory = "time"
	CategoryWeather             PricingFactorCategory = "weather"
	CategoryVehicleType         PricingFactorCategory = "vehicle_type"
	CategorySpecialRequirements PricingFactorCategory = "special_requirements"
	CategoryLocation            PricingFactorCategory = "location"
	CategoryServiceLevel        PricingFactorCategory = "service_level"
	CategoryStaffRequired       PricingFactorCategory = "staff_required"
	CategoryPropertyType        PricingFactorCategory = "property_type"
	CategoryInsurance           PricingFactorCategory = "insurance"
	CategoryLoadingTime         PricingFactorCategory = "loading_time"
)

// ConfigurationListingKey is the extra key the factor listing carries next to the categories.
const ConfigurationListingKey = "configuration"

// PricingFactorCategories lists every known category in display order.
var PricingFactorCategories = []PricingFactorCategory{
	CategoryDistance,
	CategoryWeight,
	CategoryTime,
	CategoryWeather,
	CategoryVehicleType,
	CategorySpecialRequirements,
	CategoryLocation,
	CategoryServiceLevel,
	CategoryStaffRequired,
	CategoryPropertyType,
	CategoryInsurance,
	CategoryLoadingTime,
}

var pricingFactorCategoryLabels = map[PricingFactorCategory]string{
	CategoryDistance:            "Distance",
	CategoryWeight:              "Weight",
	CategoryTime:                "Time",
	CategoryWeather:             "Weather",
	CategoryVehicleType:         "Vehicle Type",
	CategorySpecialRequirements: "Special Requirements",
	CategoryLocation:            "Location",
	CategoryServiceLevel:        "Service Level",
	CategoryStaffRequired:       "Staff Required",
	CategoryPropertyType:        "Property Type",
	CategoryInsurance:           "Insurance",
	CategoryLoadingTime:         "Loading Time",
}

// IsKnown reports whether c is one of the twelve categories.
func (c PricingFactorCategory) IsKnown() bool {
	_, ok := pricingFactorCategoryLabels[c]
	return ok
}

// Label returns the human readable name, or the raw key for unknown categories.
func (c PricingFactorCategory) Label() string {
	if label, ok := pricingFactorCategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c PricingFactorCategory) String() string {
	return string(c)
}

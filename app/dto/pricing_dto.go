package dto

import "github.com/amirphl/morevans-pricing/models"

// PricingConfigurationRequest is the body of configuration create and update
type PricingConfigurationRequest struct {
	Name                    string            `json:"name" validate:"required,max=255"`
	IsActive                *bool             `json:"is_active,omitempty"`
	IsDefault               bool              `json:"is_default"`
	BasePrice               models.Decimal    `json:"base_price" validate:"gte=0"`
	BasePricePerMile        models.Decimal    `json:"base_price_per_mile" validate:"gte=0"`
	BasePricePerKg          models.Decimal    `json:"base_price_per_kg" validate:"gte=0"`
	BasePricePerCubicMeter  models.Decimal    `json:"base_price_per_cubic_meter" validate:"gte=0"`
	BasePricePerHour        models.Decimal    `json:"base_price_per_hour" validate:"gte=0"`
	MinPrice                models.Decimal    `json:"min_price" validate:"gte=0"`
	MaxPriceMultiplier      *models.Decimal   `json:"max_price_multiplier,omitempty" validate:"omitempty,gte=1"`
	FuelSurchargePercentage models.Decimal    `json:"fuel_surcharge_percentage" validate:"gte=0"`
	CarbonOffsetRate        models.Decimal    `json:"carbon_offset_rate" validate:"gte=0"`
	ActiveFactors           map[string][]uint `json:"active_factors"`
}

// SetDefaultConfigurationRequest is the body of the set-default call
type SetDefaultConfigurationRequest struct {
	ConfigurationID uint `json:"configuration_id" validate:"required"`
}

// MessageResponse is returned by calls without a resource body
type MessageResponse struct {
	Message string `json:"message"`
}

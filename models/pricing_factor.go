package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PricingFactor is one named, categorized pricing rule. The category specific attribute set
// lives in Attributes and always matches Category (nil for unknown categories).
type PricingFactor struct {
	ID          uint                    `json:"id,omitempty"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Category    PricingFactorCategory   `json:"category"`
	IsActive    bool                    `json:"is_active"`
	Attributes  PricingFactorAttributes `json:"-"`
}

// PricingFactorAttributes is implemented by every category specific attribute set.
type PricingFactorAttributes interface {
	Category() PricingFactorCategory
}

type DistanceAttributes struct {
	BaseRatePerKm *Decimal `json:"base_rate_per_km,omitempty"`
	MinDistance   *Decimal `json:"min_distance,omitempty"`
	MaxDistance   *Decimal `json:"max_distance,omitempty"`
}

type WeightAttributes struct {
	BaseRatePerKg *Decimal `json:"base_rate_per_kg,omitempty"`
	MinWeight     *Decimal `json:"min_weight,omitempty"`
	MaxWeight     *Decimal `json:"max_weight,omitempty"`
}

type TimeAttributes struct {
	PeakHourMultiplier *Decimal `json:"peak_hour_multiplier,omitempty"`
	WeekendMultiplier  *Decimal `json:"weekend_multiplier,omitempty"`
	HolidayMultiplier  *Decimal `json:"holiday_multiplier,omitempty"`
}

type WeatherAttributes struct {
	RainMultiplier           *Decimal `json:"rain_multiplier,omitempty"`
	SnowMultiplier           *Decimal `json:"snow_multiplier,omitempty"`
	ExtremeWeatherMultiplier *Decimal `json:"extreme_weather_multiplier,omitempty"`
}

type VehicleTypeAttributes struct {
	VehicleType        *string  `json:"vehicle_type,omitempty"`
	BaseRate           *Decimal `json:"base_rate,omitempty"`
	CapacityMultiplier *Decimal `json:"capacity_multiplier,omitempty"`
}

type SpecialRequirementsAttributes struct {
	FragileItemsMultiplier *Decimal `json:"fragile_items_multiplier,omitempty"`
	AssemblyRequiredRate   *Decimal `json:"assembly_required_rate,omitempty"`
	SpecialEquipmentRate   *Decimal `json:"special_equipment_rate,omitempty"`
}

type LocationAttributes struct {
	CityName         *string  `json:"city_name,omitempty"`
	ZoneMultiplier   *Decimal `json:"zone_multiplier,omitempty"`
	CongestionCharge *Decimal `json:"congestion_charge,omitempty"`
	ParkingFee       *Decimal `json:"parking_fee,omitempty"`
}

type ServiceLevelAttributes struct {
	ServiceLevel    *string  `json:"service_level,omitempty"`
	PriceMultiplier *Decimal `json:"price_multiplier,omitempty"`
}

type StaffRequiredAttributes struct {
	BaseRatePerStaff *Decimal `json:"base_rate_per_staff,omitempty"`
	MinStaff         *Decimal `json:"min_staff,omitempty"`
	MaxStaff         *Decimal `json:"max_staff,omitempty"`
}

type PropertyTypeAttributes struct {
	PropertyType     *string  `json:"property_type,omitempty"`
	BaseRate         *Decimal `json:"base_rate,omitempty"`
	RatePerRoom      *Decimal `json:"rate_per_room,omitempty"`
	ElevatorDiscount *Decimal `json:"elevator_discount,omitempty"`
	FloorRate        *Decimal `json:"floor_rate,omitempty"`
}

type InsuranceAttributes struct {
	BaseRate        *Decimal `json:"base_rate,omitempty"`
	ValuePercentage *Decimal `json:"value_percentage,omitempty"`
	MinPremium      *Decimal `json:"min_premium,omitempty"`
}

type LoadingTimeAttributes struct {
	BaseRatePerHour    *Decimal `json:"base_rate_per_hour,omitempty"`
	MinHours           *Decimal `json:"min_hours,omitempty"`
	OvertimeMultiplier *Decimal `json:"overtime_multiplier,omitempty"`
}

func (*DistanceAttributes) Category() PricingFactorCategory            { return CategoryDistance }
func (*WeightAttributes) Category() PricingFactorCategory              { return CategoryWeight }
func (*TimeAttributes) Category() PricingFactorCategory                { return CategoryTime }
func (*WeatherAttributes) Category() PricingFactorCategory             { return CategoryWeather }
func (*VehicleTypeAttributes) Category() PricingFactorCategory         { return CategoryVehicleType }
func (*SpecialRequirementsAttributes) Category() PricingFactorCategory { return CategorySpecialRequirements }
func (*LocationAttributes) Category() PricingFactorCategory            { return CategoryLocation }
func (*ServiceLevelAttributes) Category() PricingFactorCategory        { return CategoryServiceLevel }
func (*StaffRequiredAttributes) Category() PricingFactorCategory       { return CategoryStaffRequired }
func (*PropertyTypeAttributes) Category() PricingFactorCategory        { return CategoryPropertyType }
func (*InsuranceAttributes) Category() PricingFactorCategory           { return CategoryInsurance }
func (*LoadingTimeAttributes) Category() PricingFactorCategory         { return CategoryLoadingTime }

// NewPricingFactorAttributes returns an empty attribute set for c, or nil when c is unknown.
func NewPricingFactorAttributes(c PricingFactorCategory) PricingFactorAttributes {
	switch c {
	case CategoryDistance:
		return &DistanceAttributes{}
	case CategoryWeight:
		return &WeightAttributes{}
	case CategoryTime:
		return &TimeAttributes{}
	case CategoryWeather:
		return &WeatherAttributes{}
	case CategoryVehicleType:
		return &VehicleTypeAttributes{}
	case CategorySpecialRequirements:
		return &SpecialRequirementsAttributes{}
	case CategoryLocation:
		return &LocationAttributes{}
	case CategoryServiceLevel:
		return &ServiceLevelAttributes{}
	case CategoryStaffRequired:
		return &StaffRequiredAttributes{}
	case CategoryPropertyType:
		return &PropertyTypeAttributes{}
	case CategoryInsurance:
		return &InsuranceAttributes{}
	case CategoryLoadingTime:
		return &LoadingTimeAttributes{}
	default:
		return nil
	}
}

// AttributesAs narrows the attribute set of f to the concrete type T.
//
//	d, ok := models.AttributesAs[*models.DistanceAttributes](factor)
func AttributesAs[T PricingFactorAttributes](f *PricingFactor) (T, bool) {
	attrs, ok := f.Attributes.(T)
	return attrs, ok
}

type pricingFactorBase struct {
	ID          uint                  `json:"id,omitempty"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Category    PricingFactorCategory `json:"category"`
	IsActive    bool                  `json:"is_active"`
}

// UnmarshalJSON decodes a flat factor record: base fields plus the attributes of its category.
// Keys belonging to other categories are ignored.
func (f *PricingFactor) UnmarshalJSON(data []byte) error {
	var base pricingFactorBase
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	f.ID = base.ID
	f.Name = base.Name
	f.Description = base.Description
	f.Category = base.Category
	f.IsActive = base.IsActive
	f.Attributes = nil

	attrs := NewPricingFactorAttributes(base.Category)
	if attrs == nil {
		return nil
	}
	if err := json.Unmarshal(data, attrs); err != nil {
		return fmt.Errorf("decode %s attributes: %w", base.Category, err)
	}
	f.Attributes = attrs
	return nil
}

// MarshalJSON encodes the factor as the flat record the backend expects.
func (f PricingFactor) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 8)
	for k, v := range f.AttributeValues() {
		out[k] = v
	}
	if f.ID != 0 {
		out["id"] = f.ID
	}
	out["name"] = f.Name
	out["description"] = f.Description
	out["category"] = f.Category
	out["is_active"] = f.IsActive
	return json.Marshal(out)
}

// AttributeValues returns the populated attributes keyed by their wire name.
func (f *PricingFactor) AttributeValues() map[string]any {
	out := make(map[string]any)
	if f.Attributes == nil {
		return out
	}
	raw, err := json.Marshal(f.Attributes)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// AttributeStrings is AttributeValues rendered the way a form input holds them.
func (f *PricingFactor) AttributeStrings() map[string]string {
	values := f.AttributeValues()
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = FormatValue(v)
	}
	return out
}

// DecodePricingFactor decodes one item of the grouped factor listing. The listing key decides
// the category, whatever the item itself carries.
func DecodePricingFactor(raw json.RawMessage, category PricingFactorCategory) (PricingFactor, error) {
	var f PricingFactor
	if err := json.Unmarshal(raw, &f); err != nil {
		return PricingFactor{}, err
	}
	if f.Category == category {
		return f, nil
	}
	f.Category = category
	f.Attributes = NewPricingFactorAttributes(category)
	if f.Attributes != nil {
		if err := json.Unmarshal(raw, f.Attributes); err != nil {
			return PricingFactor{}, fmt.Errorf("decode %s attributes: %w", category, err)
		}
	}
	return f, nil
}

// FormatValue renders a decoded JSON scalar as plain text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case Decimal:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

package form

import (
	"testing"

	"github.com/amirphl/morevans-pricing/app/schema"
	"github.com/amirphl/morevans-pricing/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v float64) *models.Decimal { d := models.Decimal(v); return &d }

func TestNewPricingFactorForm_Create(t *testing.T) {
	f := NewPricingFactorForm(nil)

	values := f.Values()
	assert.Zero(t, f.ID())
	assert.False(t, f.IsEdit())
	assert.True(t, values.IsActive)
	assert.Empty(t, values.Category)
	assert.Len(t, values.Fields, len(schema.AllKeys()))
	for _, key := range schema.AllKeys() {
		assert.Equal(t, "", values.Fields[key], key)
	}
}

func TestNewPricingFactorForm_SeededFromRecord(t *testing.T) {
	factor := &models.PricingFactor{
		ID:          42,
		Name:        "City",
		Description: "Urban moves",
		Category:    models.CategoryDistance,
		IsActive:    false,
		Attributes: &models.DistanceAttributes{
			BaseRatePerKm: dec(2.5),
			MinDistance:   dec(0),
		},
	}

	f := NewPricingFactorForm(factor)
	values := f.Values()

	assert.Equal(t, uint(42), f.ID())
	assert.True(t, f.IsEdit())
	assert.Equal(t, models.CategoryDistance, values.Category)
	assert.False(t, values.IsActive)
	assert.Equal(t, "2.5", values.Fields["base_rate_per_km"])
	assert.Equal(t, "0", values.Fields["min_distance"])
	assert.Equal(t, "", values.Fields["max_distance"])
}

func TestPricingFactorForm_SetCategory(t *testing.T) {
	f := NewPricingFactorForm(nil)

	f.SetCategory(models.CategoryDistance)
	for key, def := range schema.Defaults(models.CategoryDistance) {
		assert.Equal(t, def, f.Values().Fields[key])
	}
	assert.True(t, f.Touched("category"))

	f.SetField("base_rate_per_km", "9")
	f.SetCategory(models.CategoryWeight)

	values := f.Values()
	assert.Equal(t, models.CategoryWeight, values.Category)
	for _, key := range schema.Keys(models.CategoryDistance) {
		assert.Equal(t, "", values.Fields[key], key)
	}
	for key, def := range schema.Defaults(models.CategoryWeight) {
		assert.Equal(t, def, values.Fields[key], key)
	}
	assert.Len(t, values.Fields, len(schema.AllKeys()))
}

func TestPricingFactorForm_SetCategorySameIsNoop(t *testing.T) {
	f := NewPricingFactorForm(nil)
	f.SetCategory(models.CategoryDistance)
	f.SetField("base_rate_per_km", "4")

	f.SetCategory(models.CategoryDistance)

	assert.Equal(t, "4", f.Values().Fields["base_rate_per_km"])
}

func TestPricingFactorForm_CategoryRoundTrip(t *testing.T) {
	f := NewPricingFactorForm(nil)
	f.SetCategory(models.CategoryStaffRequired)
	f.SetField("min_staff", "3")

	f.SetCategory(models.CategoryTime)
	f.SetField("weekend_multiplier", "1.4")
	f.SetCategory(models.CategoryStaffRequired)

	values := f.Values()
	assert.Len(t, values.Fields, len(schema.AllKeys()))
	for _, key := range schema.Keys(models.CategoryTime) {
		assert.Equal(t, "", values.Fields[key], key)
	}
	for _, key := range schema.Keys(models.CategoryStaffRequired) {
		_, ok := values.Fields[key]
		assert.True(t, ok, key)
	}

	payload := f.Payload()
	for _, key := range schema.Keys(models.CategoryTime) {
		assert.NotContains(t, payload, key)
	}
}

func TestPricingFactorForm_SharedKeyDoesNotLeak(t *testing.T) {
	f := NewPricingFactorForm(nil)
	f.SetCategory(models.CategoryVehicleType)
	f.SetField("base_rate", "12")

	f.SetCategory(models.CategoryInsurance)

	assert.Equal(t, "0", f.Values().Fields["base_rate"])
}

func TestPricingFactorForm_SetField(t *testing.T) {
	f := NewPricingFactorForm(nil)

	f.SetField("name", "Rush")
	f.SetField("description", "Rush hour")
	f.SetField("category", "time")
	f.SetField("is_active", "false")
	f.SetField("holiday_multiplier", "2")

	values := f.Values()
	assert.Equal(t, "Rush", values.Name)
	assert.Equal(t, "Rush hour", values.Description)
	assert.Equal(t, models.CategoryTime, values.Category)
	assert.False(t, values.IsActive)
	assert.Equal(t, "2", values.Fields["holiday_multiplier"])
	assert.True(t, f.Touched("holiday_multiplier"))
	assert.False(t, f.Touched("rain_multiplier"))

	f.SetField("is_active", "maybe")
	assert.False(t, f.Values().IsActive)
}

func TestPricingFactorForm_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category models.PricingFactorCategory
		fields   map[string]string
		expected map[string]string
	}{
		{
			name:     "defaults are valid",
			category: models.CategoryLocation,
			expected: map[string]string{},
		},
		{
			name:     "rate below zero",
			category: models.CategoryDistance,
			fields:   map[string]string{"base_rate_per_km": "-1"},
			expected: map[string]string{"base_rate_per_km": "Base rate per km must be greater than or equal to 0"},
		},
		{
			name:     "multiplier below one",
			category: models.CategoryWeather,
			fields:   map[string]string{"rain_multiplier": "0.5"},
			expected: map[string]string{"rain_multiplier": "Rain multiplier must be greater than or equal to 1"},
		},
		{
			name:     "bounded above max",
			category: models.CategoryPropertyType,
			fields:   map[string]string{"elevator_discount": "1.2"},
			expected: map[string]string{"elevator_discount": "Elevator discount must be less than or equal to 1"},
		},
		{
			name:     "not a number",
			category: models.CategoryInsurance,
			fields:   map[string]string{"min_premium": "lots"},
			expected: map[string]string{"min_premium": "Minimum premium must be a number"},
		},
		{
			name:     "fractional count",
			category: models.CategoryStaffRequired,
			fields:   map[string]string{"min_staff": "1.5"},
			expected: map[string]string{"min_staff": "Minimum staff must be a whole number"},
		},
		{
			name:     "unknown choice",
			category: models.CategoryServiceLevel,
			fields:   map[string]string{"service_level": "overnight"},
			expected: map[string]string{"service_level": "Service level must be one of: standard, express, premium"},
		},
		{
			name:     "missing required",
			category: models.CategoryLoadingTime,
			fields:   map[string]string{"min_hours": ""},
			expected: map[string]string{"min_hours": "Minimum hours is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPricingFactorForm(nil)
			f.SetField("name", "Factor")
			f.SetField("description", "Description")
			f.SetCategory(tt.category)
			for k, v := range tt.fields {
				f.SetField(k, v)
			}

			errs := f.Validate()

			assert.Equal(t, tt.expected, errs)
			assert.Equal(t, tt.expected, f.Errors())
			assert.True(t, f.CanSubmit(), "category errors never block submit")
		})
	}
}

func TestPricingFactorForm_CanSubmitNeedsBaseFields(t *testing.T) {
	f := NewPricingFactorForm(nil)
	assert.False(t, f.CanSubmit())

	errs := f.Validate()
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Description is required", errs["description"])
	assert.Equal(t, "Category is required", errs["category"])

	f.SetField("name", "Factor")
	f.SetField("description", "Description")
	assert.False(t, f.CanSubmit())

	f.SetCategory(models.CategoryWeight)
	assert.True(t, f.CanSubmit())
}

func TestPricingFactorForm_UnknownCategory(t *testing.T) {
	f := NewPricingFactorForm(nil)
	f.SetField("category", "teleport")

	errs := f.Validate()

	require.Contains(t, errs, "category")
	assert.Equal(t, "Category must be one of the supported categories", errs["category"])
}

package businessflow_test

import (
	"context"
	"testing"

	"github.com/amirphl/morevans-pricing/app/dto"
	businessflow "github.com/amirphl/morevans-pricing/business_flow"
	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/repository"
	"github.com/amirphl/morevans-pricing/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminFlow() (businessflow.PricingAdminFlow, *repository.MemoryPricingFactorRepository, *repository.MemoryPricingConfigurationRepository) {
	factors := repository.NewMemoryPricingFactorRepository()
	configurations := repository.NewMemoryPricingConfigurationRepository()
	return businessflow.NewPricingAdminFlow(factors, configurations), factors, configurations
}

func TestPricingAdminFlow_SaveFactor(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newAdminFlow()

	created, err := flow.AdminSaveFactor(ctx, models.CategoryDistance, 0, map[string]any{
		"name":             " City ",
		"description":      "Urban",
		"category":         "distance",
		"is_active":        false,
		"base_rate_per_km": 2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), created.ID)
	assert.Equal(t, "City", created.Name)
	assert.False(t, created.IsActive)
	assert.Equal(t, map[string]string{"base_rate_per_km": "2.5"}, created.AttributeStrings())

	updated, err := flow.AdminSaveFactor(ctx, models.CategoryDistance, created.ID, map[string]any{
		"name":         "City",
		"max_distance": 40.0,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, map[string]string{"max_distance": "40"}, updated.AttributeStrings())

	tests := []struct {
		name     string
		category models.PricingFactorCategory
		id       uint
		body     map[string]any
		check    func(error) bool
	}{
		{
			name:     "foreign attribute",
			category: models.CategoryDistance,
			body:     map[string]any{"name": "City", "weekend_multiplier": 1.2},
			check:    businessflow.IsAttributeNotInCategory,
		},
		{
			name:     "wrong attribute type",
			category: models.CategoryDistance,
			body:     map[string]any{"name": "City", "base_rate_per_km": "fast"},
			check:    businessflow.IsAttributeInvalid,
		},
		{
			name:     "missing name",
			category: models.CategoryTime,
			body:     map[string]any{"name": "  "},
			check:    businessflow.IsFactorNameRequired,
		},
		{
			name:     "unknown category",
			category: "floor",
			body:     map[string]any{"name": "City"},
			check:    businessflow.IsInvalidCategory,
		},
		{
			name:     "unknown id",
			category: models.CategoryDistance,
			id:       99,
			body:     map[string]any{"name": "City"},
			check:    businessflow.IsFactorNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.AdminSaveFactor(ctx, tt.category, tt.id, tt.body)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestPricingAdminFlow_ListFactors(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newAdminFlow()

	_, err := flow.AdminSaveFactor(ctx, models.CategoryTime, 0, map[string]any{"name": "Peak", "peak_hour_multiplier": 1.5})
	require.NoError(t, err)

	grouped, err := flow.AdminListFactors(ctx)
	require.NoError(t, err)
	assert.Len(t, grouped, len(models.PricingFactorCategories)+1)
	assert.Contains(t, grouped, models.ConfigurationListingKey)
	assert.Len(t, grouped["time"], 1)
	assert.Empty(t, grouped["distance"])
}

func TestPricingAdminFlow_SaveFactorNumericText(t *testing.T) {
	ctx := context.Background()
	flow, factors, _ := newAdminFlow()

	created, err := flow.AdminSaveFactor(ctx, models.CategoryLocation, 0, map[string]any{
		"name":              2024.0,
		"description":       100.0,
		"city_name":         1.0,
		"zone_multiplier":   1.2,
		"congestion_charge": "0",
		"parking_fee":       "2.50",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024", created.Name)
	assert.Equal(t, "100", created.Description)

	stored, err := factors.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"city_name":         "1",
		"zone_multiplier":   "1.2",
		"congestion_charge": "0",
		"parking_fee":       "2.5",
	}, stored.AttributeStrings())

	_, err = flow.AdminSaveFactor(ctx, models.CategoryLocation, 0, map[string]any{"name": 0.0})
	assert.NoError(t, err, "zero renders as a non-empty name")

	_, err = flow.AdminSaveFactor(ctx, models.CategoryLocation, 0, map[string]any{"name": "City", "zone_multiplier": true})
	assert.True(t, businessflow.IsAttributeInvalid(err), "numeric fields are not rendered as text")
}

func TestPricingAdminFlow_Configurations(t *testing.T) {
	ctx := context.Background()
	flow, _, configurations := newAdminFlow()

	first, err := flow.AdminSaveConfiguration(ctx, 0, &dto.PricingConfigurationRequest{
		Name:          "Standard",
		IsDefault:     true,
		BasePrice:     25,
		ActiveFactors: map[string][]uint{"distance": {1}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Decimal(1), first.MaxPriceMultiplier)
	assert.True(t, first.IsActive)

	second, err := flow.AdminSaveConfiguration(ctx, 0, &dto.PricingConfigurationRequest{
		Name:               "City",
		IsActive:           utils.ToPtr(false),
		IsDefault:          true,
		MaxPriceMultiplier: utils.ToPtr[models.Decimal](2.5),
	})
	require.NoError(t, err)

	stored, err := configurations.ByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDefault, "saving a new default clears the previous one")

	require.NoError(t, flow.AdminSetDefaultConfiguration(ctx, first.ID))
	list, err := flow.AdminListConfigurations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)
	assert.False(t, list[1].IsActive)
	assert.Equal(t, models.Decimal(2.5), list[1].MaxPriceMultiplier)

	t.Run("Errors", func(t *testing.T) {
		_, err := flow.AdminSaveConfiguration(ctx, 0, &dto.PricingConfigurationRequest{Name: " "})
		assert.True(t, businessflow.IsConfigurationNameRequired(err))

		_, err = flow.AdminSaveConfiguration(ctx, 0, &dto.PricingConfigurationRequest{Name: "x", ActiveFactors: map[string][]uint{"floor": {1}}})
		assert.True(t, businessflow.IsInvalidCategory(err))

		_, err = flow.AdminSaveConfiguration(ctx, 42, &dto.PricingConfigurationRequest{Name: "x"})
		assert.True(t, businessflow.IsConfigurationNotFound(err))

		assert.True(t, businessflow.IsConfigurationNotFound(flow.AdminSetDefaultConfiguration(ctx, 42)))
		assert.True(t, businessflow.IsConfigurationIDRequired(flow.AdminSetDefaultConfiguration(ctx, 0)))
		assert.True(t, businessflow.IsConfigurationNotFound(flow.AdminDeleteConfiguration(ctx, 42)))
	})

	t.Run("DefaultCanBeDeleted", func(t *testing.T) {
		require.NoError(t, flow.AdminDeleteConfiguration(ctx, first.ID))
		list, err := flow.AdminListConfigurations(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID)
	})
}

func TestPricingAdminFlow_DeleteFactor(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newAdminFlow()

	f, err := flow.AdminSaveFactor(ctx, models.CategoryWeight, 0, map[string]any{"name": "Heavy"})
	require.NoError(t, err)
	require.NoError(t, flow.AdminDeleteFactor(ctx, f.ID))
	assert.True(t, businessflow.IsFactorNotFound(flow.AdminDeleteFactor(ctx, f.ID)))
}

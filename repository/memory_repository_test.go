package repository_test

import (
	"testing"

	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/repository"
	testingutil "github.com/amirphl/morevans-pricing/testing"
	"github.com/amirphl/morevans-pricing/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPricingFactorRepository(t *testing.T) {
	repo := repository.NewMemoryPricingFactorRepository()
	ctx := testingutil.CreateTestContext()

	short := testingutil.DistanceFactor(0, "Short hop", 1.5)
	peak := testingutil.TimeFactor(0, "Peak", 1.2)
	require.NoError(t, repo.Save(ctx, &short))
	require.NoError(t, repo.Save(ctx, &peak))
	assert.Equal(t, uint(1), short.ID)
	assert.Equal(t, uint(2), peak.ID)

	t.Run("ByID", func(t *testing.T) {
		f, err := repo.ByID(ctx, short.ID)
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, "Short hop", f.Name)
		attrs, ok := models.AttributesAs[*models.DistanceAttributes](f)
		require.True(t, ok)
		assert.Equal(t, models.Decimal(1.5), *attrs.BaseRatePerKm)
	})

	t.Run("ByIDNotFound", func(t *testing.T) {
		f, err := repo.ByID(ctx, 999)
		assert.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("ReturnedValuesAreCopies", func(t *testing.T) {
		f, err := repo.ByID(ctx, short.ID)
		require.NoError(t, err)
		attrs, _ := models.AttributesAs[*models.DistanceAttributes](f)
		*attrs.BaseRatePerKm = 99

		again, err := repo.ByID(ctx, short.ID)
		require.NoError(t, err)
		stored, _ := models.AttributesAs[*models.DistanceAttributes](again)
		assert.Equal(t, models.Decimal(1.5), *stored.BaseRatePerKm)
	})

	t.Run("ByFilter", func(t *testing.T) {
		all, err := repo.ByFilter(ctx, models.PricingFactorFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, short.ID, all[0].ID)

		category := models.CategoryTime
		timeOnly, err := repo.ByFilter(ctx, models.PricingFactorFilter{Category: &category})
		require.NoError(t, err)
		require.Len(t, timeOnly, 1)
		assert.Equal(t, "Peak", timeOnly[0].Name)

		inactive, err := repo.ByFilter(ctx, models.PricingFactorFilter{IsActive: utils.ToPtr(false)})
		require.NoError(t, err)
		assert.Empty(t, inactive)
	})

	t.Run("Update", func(t *testing.T) {
		peak.Name = "Evening peak"
		peak.IsActive = false
		require.NoError(t, repo.Update(ctx, &peak))

		f, err := repo.ByID(ctx, peak.ID)
		require.NoError(t, err)
		assert.Equal(t, "Evening peak", f.Name)
		assert.False(t, f.IsActive)

		missing := testingutil.TimeFactor(42, "Missing", 1)
		assert.ErrorIs(t, repo.Update(ctx, &missing), repository.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, peak.ID))
		assert.ErrorIs(t, repo.Delete(ctx, peak.ID), repository.ErrNotFound)
	})
}

func TestMemoryPricingConfigurationRepository(t *testing.T) {
	repo := repository.NewMemoryPricingConfigurationRepository()
	ctx := testingutil.CreateTestContext()

	standard := testingutil.Configuration(0, "Standard", true, 1)
	city := testingutil.Configuration(0, "City", false, 1, 2)
	require.NoError(t, repo.Save(ctx, &standard))
	require.NoError(t, repo.Save(ctx, &city))

	t.Run("List", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Standard", list[0].Name)
		assert.Equal(t, []uint{1, 2}, list[1].ActiveFactors[models.CategoryDistance])
	})

	t.Run("ActiveFactorsAreCopied", func(t *testing.T) {
		cfg, err := repo.ByID(ctx, city.ID)
		require.NoError(t, err)
		cfg.ActiveFactors[models.CategoryDistance][0] = 77

		again, err := repo.ByID(ctx, city.ID)
		require.NoError(t, err)
		assert.Equal(t, uint(1), again.ActiveFactors[models.CategoryDistance][0])
	})

	t.Run("SetDefault", func(t *testing.T) {
		require.NoError(t, repo.SetDefault(ctx, city.ID))
		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.False(t, list[0].IsDefault)
		assert.True(t, list[1].IsDefault)

		assert.ErrorIs(t, repo.SetDefault(ctx, 999), repository.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, standard.ID))
		cfg, err := repo.ByID(ctx, standard.ID)
		assert.NoError(t, err)
		assert.Nil(t, cfg)
	})
}

func TestSeedPricingData(t *testing.T) {
	factors := repository.NewMemoryPricingFactorRepository()
	configurations := repository.NewMemoryPricingConfigurationRepository()
	ctx := testingutil.CreateTestContext()

	require.NoError(t, repository.SeedPricingData(ctx, factors, configurations))

	all, err := factors.ByFilter(ctx, models.PricingFactorFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	list, err := configurations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	defaults := 0
	for _, cfg := range list {
		if cfg.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	// a second run leaves populated stores alone
	require.NoError(t, repository.SeedPricingData(ctx, factors, configurations))
	list, err = configurations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

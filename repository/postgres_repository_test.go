package repository_test

import (
	"errors"
	"testing"

	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/repository"
	testingutil "github.com/amirphl/morevans-pricing/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestDB(t *testing.T, fn func(*testingutil.TestDB) error) {
	t.Helper()
	err := testingutil.TestWithDB(fn)
	if errors.Is(err, testingutil.ErrNoTestDB) {
		t.Skip("set TEST_DB_HOST to run the postgres repository tests")
	}
	require.NoError(t, err)
}

func TestPostgresPricingRepositories(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) error {
		factors := repository.NewPricingFactorRepository(testDB.DB)
		configurations := repository.NewPricingConfigurationRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("Seed", func(t *testing.T) {
			require.NoError(t, repository.SeedPricingData(ctx, factors, configurations))
			all, err := factors.ByFilter(ctx, models.PricingFactorFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 5)
		})

		t.Run("FactorRoundTrip", func(t *testing.T) {
			f := testingutil.DistanceFactor(0, "Long haul", 0.9)
			require.NoError(t, factors.Save(ctx, &f))
			require.NotZero(t, f.ID)

			got, err := factors.ByID(ctx, f.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, f.AttributeStrings(), got.AttributeStrings())

			f.IsActive = false
			require.NoError(t, factors.Update(ctx, &f))
			got, err = factors.ByID(ctx, f.ID)
			require.NoError(t, err)
			assert.False(t, got.IsActive)

			require.NoError(t, factors.Delete(ctx, f.ID))
			assert.ErrorIs(t, factors.Delete(ctx, f.ID), repository.ErrNotFound)
		})

		t.Run("SetDefault", func(t *testing.T) {
			list, err := configurations.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)

			require.NoError(t, configurations.SetDefault(ctx, list[1].ID))
			list, err = configurations.List(ctx)
			require.NoError(t, err)
			assert.False(t, list[0].IsDefault)
			assert.True(t, list[1].IsDefault)
		})

		t.Run("ClearAllTables", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			list, err := configurations.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
		return nil
	})
}

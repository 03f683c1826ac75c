package businessflow_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/amirphl/morevans-pricing/app/form"
	"github.com/amirphl/morevans-pricing/app/services"
	businessflow "github.com/amirphl/morevans-pricing/business_flow"
	"github.com/amirphl/morevans-pricing/models"
	testingutil "github.com/amirphl/morevans-pricing/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	factorsPath        = "/admin/pricing-factors/"
	configurationsPath = "/admin/price-configurations/"
)

func scriptedCollection(confirmer businessflow.Confirmer) (*testingutil.FakePricingAPI, *businessflow.PricingCollection) {
	inactive := testingutil.DistanceFactor(2, "Retired", 9)
	inactive.IsActive = false

	api := testingutil.NewFakePricingAPI().
		Respond(http.MethodGet, factorsPath, http.StatusOK, testingutil.FactorListing(
			testingutil.DistanceFactor(1, "City", 1.5),
			inactive,
			testingutil.TimeFactor(3, "Peak", 1.2),
		)).
		Respond(http.MethodGet, configurationsPath, http.StatusOK, testingutil.ConfigurationListing(
			testingutil.Configuration(7, "Standard", true, 1),
			testingutil.Configuration(8, "City", false, 1),
		))

	collection := businessflow.NewPricingCollection(api,
		businessflow.NewPricingFactorFlow(api),
		businessflow.NewPricingConfigurationFlow(api),
		confirmer)
	return api, collection
}

func factorIDs(factors []models.PricingFactor) []uint {
	ids := make([]uint, len(factors))
	for i, f := range factors {
		ids[i] = f.ID
	}
	return ids
}

func TestPricingCollection_Load(t *testing.T) {
	_, collection := scriptedCollection(businessflow.AlwaysConfirm)
	require.NoError(t, collection.Load(context.Background()))

	assert.True(t, collection.Loaded())
	assert.Equal(t, []uint{1, 3}, factorIDs(collection.Factors()))
	assert.Len(t, collection.Configurations(), 2)

	groups := collection.FactorsByCategory()
	require.Len(t, groups, 2)
	assert.Equal(t, models.CategoryDistance, groups[0].Category)
	assert.Equal(t, models.CategoryTime, groups[1].Category)

	catalog := collection.ActiveFactorCatalog()
	assert.True(t, catalog.Has(models.CategoryDistance, 1))
	assert.False(t, catalog.Has(models.CategoryDistance, 2))

	f, ok := collection.Factor(3)
	require.True(t, ok)
	attrs, ok := models.AttributesAs[*models.TimeAttributes](&f)
	require.True(t, ok)
	assert.Equal(t, models.Decimal(1.2), *attrs.PeakHourMultiplier)
}

func TestPricingCollection_LoadPartialData(t *testing.T) {
	tests := []struct {
		name    string
		factors []byte
		configs []byte
		wantIDs []uint
		configN int
	}{
		{
			name:    "category value is not an array",
			factors: []byte(`{"distance":"oops","time":[{"id":3,"name":"Peak","is_active":true,"peak_hour_multiplier":1.2}]}`),
			configs: []byte(`[]`),
			wantIDs: []uint{3},
		},
		{
			name:    "category item has bad attributes",
			factors: []byte(`{"distance":[{"id":1,"name":"City","is_active":true,"base_rate_per_km":"x"},{"id":4,"name":"Ok","is_active":true}]}`),
			configs: []byte(`[{"id":7,"name":"Standard"},"junk"]`),
			wantIDs: []uint{4},
			configN: 1,
		},
		{
			name:    "bodies of the wrong shape",
			factors: []byte(`[]`),
			configs: []byte(`{"results":[]}`),
			wantIDs: []uint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testingutil.NewFakePricingAPI().
				Respond(http.MethodGet, factorsPath, http.StatusOK, tt.factors).
				Respond(http.MethodGet, configurationsPath, http.StatusOK, tt.configs)
			collection := businessflow.NewPricingCollection(api, businessflow.NewPricingFactorFlow(api), businessflow.NewPricingConfigurationFlow(api), nil)

			require.NoError(t, collection.Load(context.Background()))
			assert.Equal(t, tt.wantIDs, factorIDs(collection.Factors()))
			assert.Len(t, collection.Configurations(), tt.configN)
		})
	}
}

func TestPricingCollection_LoadKeepsStringDecimals(t *testing.T) {
	api := testingutil.NewFakePricingAPI().
		Respond(http.MethodGet, factorsPath, http.StatusOK,
			[]byte(`{"distance":[{"id":1,"name":"City","is_active":true,"base_rate_per_km":"1.50","min_distance":""}]}`)).
		Respond(http.MethodGet, configurationsPath, http.StatusOK,
			[]byte(`[{"id":7,"name":"Standard","is_default":true,"base_price":"10.00","max_price_multiplier":"2.5","min_price":40}]`))
	collection := businessflow.NewPricingCollection(api, businessflow.NewPricingFactorFlow(api), businessflow.NewPricingConfigurationFlow(api), nil)

	require.NoError(t, collection.Load(context.Background()))

	f, ok := collection.Factor(1)
	require.True(t, ok)
	attrs, ok := models.AttributesAs[*models.DistanceAttributes](&f)
	require.True(t, ok)
	assert.Equal(t, models.Decimal(1.5), *attrs.BaseRatePerKm)
	assert.Equal(t, models.Decimal(0), *attrs.MinDistance)

	cfg, ok := collection.Configuration(7)
	require.True(t, ok)
	assert.Equal(t, models.Decimal(10), cfg.BasePrice)
	assert.Equal(t, models.Decimal(2.5), cfg.MaxPriceMultiplier)
	assert.Equal(t, models.Decimal(40), cfg.MinPrice)
}

// failFirstAPI fails the factor listing and reports whether the configuration fetch saw
// its context cancelled afterwards.
type failFirstAPI struct {
	failed    chan struct{}
	cancelled chan bool
}

func (a *failFirstAPI) Do(ctx context.Context, method, path string, body any) (*services.APIResponse, error) {
	if path == factorsPath {
		defer close(a.failed)
		return nil, &services.APIError{Err: errors.New("connection refused")}
	}
	<-a.failed
	select {
	case <-ctx.Done():
		a.cancelled <- true
	case <-time.After(50 * time.Millisecond):
		a.cancelled <- false
	}
	return &services.APIResponse{StatusCode: http.StatusOK, Body: []byte(`[]`)}, nil
}

func TestPricingCollection_LoadFailureDoesNotCancelSibling(t *testing.T) {
	api := &failFirstAPI{failed: make(chan struct{}), cancelled: make(chan bool, 1)}
	collection := businessflow.NewPricingCollection(api, businessflow.NewPricingFactorFlow(api), businessflow.NewPricingConfigurationFlow(api), nil)

	err := collection.Load(context.Background())
	assert.ErrorIs(t, err, businessflow.ErrLoadFailed)
	assert.False(t, <-api.cancelled, "configuration fetch runs on the caller context")
}

func TestPricingCollection_LoadFailureClearsBothLists(t *testing.T) {
	api, collection := scriptedCollection(businessflow.AlwaysConfirm)
	ctx := context.Background()
	require.NoError(t, collection.Load(ctx))

	api.Fail(http.MethodGet, configurationsPath, &services.APIError{Err: errors.New("connection refused")})
	err := collection.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, businessflow.ErrLoadFailed)
	assert.Contains(t, businessflow.UserMessage(err), "Failed to load pricing data: ")
	assert.False(t, collection.Loaded())
	assert.Empty(t, collection.Factors())
	assert.Empty(t, collection.Configurations())
}

func TestPricingCollection_DeleteFactor(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmedDeleteIsLocal", func(t *testing.T) {
		var prompts []string
		api, collection := scriptedCollection(businessflow.ConfirmFunc(func(p string) bool {
			prompts = append(prompts, p)
			return true
		}))
		require.NoError(t, collection.Load(ctx))
		api.Reset()
		api.Respond(http.MethodDelete, "/admin/pricing-factors/1/", http.StatusNoContent, nil)

		deleted, err := collection.DeleteFactor(ctx, 1)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, []string{`Are you sure you want to delete pricing factor "City"?`}, prompts)
		assert.Equal(t, []uint{3}, factorIDs(collection.Factors()))

		calls := api.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, http.MethodDelete, calls[0].Method)
	})

	t.Run("Declined", func(t *testing.T) {
		api, collection := scriptedCollection(businessflow.ConfirmFunc(func(string) bool { return false }))
		require.NoError(t, collection.Load(ctx))
		api.Reset()

		deleted, err := collection.DeleteFactor(ctx, 1)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Empty(t, api.Calls())
		assert.Len(t, collection.Factors(), 2)
	})

	t.Run("ServerFailureKeepsFactor", func(t *testing.T) {
		api, collection := scriptedCollection(businessflow.AlwaysConfirm)
		require.NoError(t, collection.Load(ctx))
		api.Reject(http.MethodDelete, "/admin/pricing-factors/1/", http.StatusInternalServerError, "boom")

		deleted, err := collection.DeleteFactor(ctx, 1)
		require.Error(t, err)
		assert.False(t, deleted)
		assert.Equal(t, "Failed to delete factor: boom", businessflow.UserMessage(err))
		assert.Len(t, collection.Factors(), 2)
	})

	t.Run("UnknownFactor", func(t *testing.T) {
		_, collection := scriptedCollection(businessflow.AlwaysConfirm)
		require.NoError(t, collection.Load(ctx))

		_, err := collection.DeleteFactor(ctx, 99)
		assert.True(t, businessflow.IsFactorNotFound(err))
	})
}

func TestPricingCollection_DeleteConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultIsRefused", func(t *testing.T) {
		asked := false
		api, collection := scriptedCollection(businessflow.ConfirmFunc(func(string) bool {
			asked = true
			return true
		}))
		require.NoError(t, collection.Load(ctx))
		api.Reset()

		cfg, ok := collection.Configuration(7)
		require.True(t, ok)
		assert.False(t, collection.CanDeleteConfiguration(cfg))

		deleted, err := collection.DeleteConfiguration(ctx, 7)
		require.Error(t, err)
		assert.False(t, deleted)
		assert.True(t, businessflow.IsDefaultConfigurationDelete(err))
		assert.False(t, asked)
		assert.Empty(t, api.Calls())
	})

	t.Run("NonDefault", func(t *testing.T) {
		api, collection := scriptedCollection(businessflow.AlwaysConfirm)
		require.NoError(t, collection.Load(ctx))
		api.Reset()
		api.Respond(http.MethodDelete, "/admin/pricing/configurations/8/", http.StatusNoContent, nil)

		deleted, err := collection.DeleteConfiguration(ctx, 8)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Len(t, collection.Configurations(), 1)
		assert.Len(t, api.Calls(), 1)
	})

	t.Run("NoConfirmerDeclines", func(t *testing.T) {
		api, collection := scriptedCollection(nil)
		require.NoError(t, collection.Load(ctx))
		api.Reset()

		deleted, err := collection.DeleteConfiguration(ctx, 8)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Empty(t, api.Calls())
	})
}

func TestPricingCollection_SetDefaultConfigurationReloads(t *testing.T) {
	ctx := context.Background()
	api, collection := scriptedCollection(businessflow.AlwaysConfirm)
	require.NoError(t, collection.Load(ctx))
	api.Reset()
	api.Respond(http.MethodPatch, "/admin/pricing/configurations/set-default/", http.StatusOK, nil)

	require.NoError(t, collection.SetDefaultConfiguration(ctx, 8))

	calls := api.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodPatch, calls[0].Method)
	assert.Equal(t, map[string]any{"configuration_id": 8.0}, calls[0].Body)
	assert.ElementsMatch(t, []string{factorsPath, configurationsPath}, []string{calls[1].Path, calls[2].Path})
}

func TestPricingCollection_SubmitReloads(t *testing.T) {
	ctx := context.Background()
	api, collection := scriptedCollection(businessflow.AlwaysConfirm)
	require.NoError(t, collection.Load(ctx))
	api.Reset()
	api.Respond(http.MethodPut, "/admin/pricing-factors/time/3/", http.StatusOK, nil)

	f, err := collection.EditFactor(3)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTime, f.Category())
	f.SetField("weekend_multiplier", "1.1")
	f.SetField("holiday_multiplier", "1.3")

	result, err := collection.SubmitFactor(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Len(t, api.CallsTo(http.MethodGet, factorsPath), 1)
	assert.Len(t, api.CallsTo(http.MethodGet, configurationsPath), 1)
}

func TestPricingCollection_EditConfigurationUsesActiveCatalog(t *testing.T) {
	_, collection := scriptedCollection(businessflow.AlwaysConfirm)
	require.NoError(t, collection.Load(context.Background()))

	f, err := collection.EditConfiguration(8)
	require.NoError(t, err)
	assert.ErrorIs(t, f.ToggleFactor(models.CategoryDistance, 2), form.ErrFactorNotInCatalog)
	assert.NoError(t, f.ToggleFactor(models.CategoryTime, 3))

	_, err = collection.EditConfiguration(99)
	assert.True(t, businessflow.IsConfigurationNotFound(err))
}

package businessflow_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/amirphl/morevans-pricing/app/form"
	businessflow "github.com/amirphl/morevans-pricing/business_flow"
	"github.com/amirphl/morevans-pricing/models"
	testingutil "github.com/amirphl/morevans-pricing/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() form.FactorCatalog {
	return form.FactorCatalog{
		models.CategoryDistance: {testingutil.DistanceFactor(1, "City", 1.5)},
		models.CategoryTime:     {testingutil.TimeFactor(3, "Peak", 1.2)},
	}
}

func TestPricingConfigurationFlow_SubmitConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		api := testingutil.NewFakePricingAPI().
			Respond(http.MethodPost, "/admin/pricing/configurations/", http.StatusCreated, nil)
		flow := businessflow.NewPricingConfigurationFlow(api)

		f := form.NewPricingConfigurationForm(nil, testCatalog())
		f.SetField("name", "Winter")
		f.SetField("base_price", " 30 ")
		require.NoError(t, f.ToggleFactor(models.CategoryDistance, 1))

		result, err := flow.SubmitConfiguration(ctx, f)
		require.NoError(t, err)
		assert.True(t, result.Created)

		calls := api.Calls()
		require.Len(t, calls, 1)
		body := calls[0].Body
		assert.Equal(t, "Winter", body["name"])
		assert.Equal(t, 30.0, body["base_price"])
		assert.Equal(t, 1.0, body["max_price_multiplier"])
		assert.Equal(t, map[string]any{"distance": []any{1.0}}, body["active_factors"])
	})

	t.Run("Update", func(t *testing.T) {
		api := testingutil.NewFakePricingAPI().
			Respond(http.MethodPut, "/admin/pricing/configurations/7/", http.StatusOK, nil)
		flow := businessflow.NewPricingConfigurationFlow(api)

		cfg := testingutil.Configuration(7, "Standard", true, 1)
		result, err := flow.SubmitConfiguration(ctx, form.NewPricingConfigurationForm(&cfg, testCatalog()))
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Len(t, api.CallsTo(http.MethodPut, "/admin/pricing/configurations/7/"), 1)
	})

	t.Run("AnyValidationErrorBlocks", func(t *testing.T) {
		api := testingutil.NewFakePricingAPI()
		flow := businessflow.NewPricingConfigurationFlow(api)

		f := form.NewPricingConfigurationForm(nil, testCatalog())
		f.SetField("name", "Winter")

		_, err := flow.SubmitConfiguration(ctx, f)
		require.Error(t, err)
		assert.True(t, businessflow.IsSubmitBlocked(err))
		assert.Equal(t, "Please correct the highlighted fields", businessflow.UserMessage(err))
		assert.Empty(t, api.Calls())
	})

	t.Run("ServerMessage", func(t *testing.T) {
		api := testingutil.NewFakePricingAPI().
			Reject(http.MethodPost, "/admin/pricing/configurations/", http.StatusBadRequest, "Validation failed")
		flow := businessflow.NewPricingConfigurationFlow(api)

		_, err := flow.SubmitConfigurationPayload(ctx, map[string]any{"name": "x"}, 0)
		require.Error(t, err)
		assert.Equal(t, "Validation failed", businessflow.UserMessage(err))
	})
}

func TestPricingConfigurationFlow_SetDefaultConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("PatchesWithConfigurationID", func(t *testing.T) {
		api := testingutil.NewFakePricingAPI().
			Respond(http.MethodPatch, "/admin/pricing/configurations/set-default/", http.StatusOK, nil)
		flow := businessflow.NewPricingConfigurationFlow(api)

		require.NoError(t, flow.SetDefaultConfiguration(ctx, 7))
		calls := api.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, map[string]any{"configuration_id": 7.0}, calls[0].Body)
	})

	t.Run("ZeroID", func(t *testing.T) {
		api := testingutil.NewFakePricingAPI()
		flow := businessflow.NewPricingConfigurationFlow(api)

		err := flow.SetDefaultConfiguration(ctx, 0)
		assert.True(t, businessflow.IsConfigurationIDRequired(err))
		assert.Empty(t, api.Calls())
	})
}

func TestPricingConfigurationFlow_DeleteConfiguration(t *testing.T) {
	api := testingutil.NewFakePricingAPI().
		Reject(http.MethodDelete, "/admin/pricing/configurations/4/", http.StatusNotFound, "Not found")
	flow := businessflow.NewPricingConfigurationFlow(api)

	err := flow.DeleteConfiguration(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, "Failed to delete configuration: Not found", businessflow.UserMessage(err))
}

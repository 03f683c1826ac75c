package businessflow_test

import (
	"bytes"
	"testing"

	businessflow "github.com/amirphl/morevans-pricing/business_flow"
	"github.com/amirphl/morevans-pricing/models"
	testingutil "github.com/amirphl/morevans-pricing/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPricingExportFlow_Export(t *testing.T) {
	cfg := testingutil.Configuration(7, "Standard", true, 1, 2)
	cfg.ActiveFactors[models.CategoryTime] = []uint{3}

	snapshot := businessflow.PricingSnapshot{
		Configurations: []models.PricingConfiguration{cfg},
		Factors: []models.PricingFactor{
			testingutil.DistanceFactor(1, "City", 1.5),
			testingutil.DistanceFactor(2, "Rural", 0.8),
			testingutil.TimeFactor(3, "Peak", 1.2),
		},
	}

	name, data, err := businessflow.NewPricingExportFlow().Export(snapshot)
	require.NoError(t, err)
	assert.Equal(t, "pricing_export.xlsx", name)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.Equal(t, []string{"Configurations", "Distance", "Time"}, xl.GetSheetList())

	rows, err := xl.GetRows("Configurations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	header := rows[0]
	assert.Equal(t, []string{"id", "name", "is_active", "is_default", "base_price"}, header[:5])
	assert.Equal(t, "active_factors", header[len(header)-1])
	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "Standard", rows[1][1])
	assert.Equal(t, "true", rows[1][3])
	assert.Equal(t, "25", rows[1][4])
	assert.Equal(t, "distance:1,2; time:3", rows[1][len(rows[1])-1])

	rows, err = xl.GetRows("Distance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "name", "description", "is_active", "base_rate_per_km", "min_distance", "max_distance"}, rows[0])
	assert.Equal(t, []string{"2", "Rural", "Rural rate", "true", "0.8", "0", "100"}, rows[2])

	rows, err = xl.GetRows("Time")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.2", rows[1][4])
}

func TestPricingExportFlow_ExportEmpty(t *testing.T) {
	_, data, err := businessflow.NewPricingExportFlow().Export(businessflow.PricingSnapshot{})
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()
	assert.Equal(t, []string{"Configurations"}, xl.GetSheetList())
}

package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/utils"
)

// SeedPricingData fills empty stores with a small catalog: a few factors in several
// categories (one inactive) and two configurations, the first of them default.
func SeedPricingData(ctx context.Context, factors PricingFactorRepository, configurations PricingConfigurationRepository) error {
	existing, err := factors.ByFilter(ctx, models.PricingFactorFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seedFactors := []*models.PricingFactor{
		{
			Name:        "Standard distance",
			Description: "Per kilometre rate for local moves",
			Category:    models.CategoryDistance,
			IsActive:    true,
			Attributes: &models.DistanceAttributes{
				BaseRatePerKm: utils.ToPtr[models.Decimal](1.5),
				MinDistance:   utils.ToPtr[models.Decimal](0.0),
				MaxDistance:   utils.ToPtr[models.Decimal](500.0),
			},
		},
		{
			Name:        "Peak times",
			Description: "Rush hour, weekend and bank holiday surcharges",
			Category:    models.CategoryTime,
			IsActive:    true,
			Attributes: &models.TimeAttributes{
				PeakHourMultiplier: utils.ToPtr[models.Decimal](1.25),
				WeekendMultiplier:  utils.ToPtr[models.Decimal](1.15),
				HolidayMultiplier:  utils.ToPtr[models.Decimal](1.5),
			},
		},
		{
			Name:        "Luton van",
			Description: "Large van with tail lift",
			Category:    models.CategoryVehicleType,
			IsActive:    true,
			Attributes: &models.VehicleTypeAttributes{
				VehicleType:        utils.ToPtr("van"),
				BaseRate:           utils.ToPtr[models.Decimal](45.0),
				CapacityMultiplier: utils.ToPtr[models.Decimal](1.3),
			},
		},
		{
			Name:        "Central London",
			Description: "Congestion zone moves",
			Category:    models.CategoryLocation,
			IsActive:    true,
			Attributes: &models.LocationAttributes{
				CityName:         utils.ToPtr("London"),
				ZoneMultiplier:   utils.ToPtr[models.Decimal](1.4),
				CongestionCharge: utils.ToPtr[models.Decimal](15.0),
				ParkingFee:       utils.ToPtr[models.Decimal](8.5),
			},
		},
		{
			Name:        "Snow",
			Description: "Winter weather surcharge",
			Category:    models.CategoryWeather,
			IsActive:    false,
			Attributes: &models.WeatherAttributes{
				RainMultiplier:           utils.ToPtr[models.Decimal](1.0),
				SnowMultiplier:           utils.ToPtr[models.Decimal](1.6),
				ExtremeWeatherMultiplier: utils.ToPtr[models.Decimal](2.0),
			},
		},
	}
	for _, f := range seedFactors {
		if err := factors.Save(ctx, f); err != nil {
			return fmt.Errorf("failed to seed pricing factor %q: %w", f.Name, err)
		}
	}

	seedConfigurations := []*models.PricingConfiguration{
		{
			Name:                    "Standard",
			IsActive:                true,
			IsDefault:               true,
			BasePrice:               25,
			BasePricePerMile:        1.2,
			BasePricePerKg:          0.05,
			BasePricePerCubicMeter:  12,
			BasePricePerHour:        35,
			MinPrice:                40,
			MaxPriceMultiplier:      3,
			FuelSurchargePercentage: 5,
			CarbonOffsetRate:        0.5,
			ActiveFactors: models.ActiveFactors{
				models.CategoryDistance:    {seedFactors[0].ID},
				models.CategoryTime:        {seedFactors[1].ID},
				models.CategoryVehicleType: {seedFactors[2].ID},
			},
		},
		{
			Name:               "City centre",
			IsActive:           true,
			BasePrice:          30,
			MinPrice:           50,
			MaxPriceMultiplier: 2.5,
			ActiveFactors: models.ActiveFactors{
				models.CategoryDistance: {seedFactors[0].ID},
				models.CategoryLocation: {seedFactors[3].ID},
			},
		},
	}
	for _, cfg := range seedConfigurations {
		if err := configurations.Save(ctx, cfg); err != nil {
			return fmt.Errorf("failed to seed pricing configuration %q: %w", cfg.Name, err)
		}
	}
	return nil
}

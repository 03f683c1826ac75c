package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/amirphl/morevans-pricing/app/dto"
	"github.com/amirphl/morevans-pricing/app/schema"
	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/repository"
)

// baseFactorKeys are the body keys of a factor that are not category attributes
var baseFactorKeys = map[string]bool{
	"id":          true,
	"name":        true,
	"description": true,
	"category":    true,
	"is_active":   true,
}

// PricingAdminFlow is the server side of the pricing admin API, backing the mock backend.
type PricingAdminFlow interface {
	AdminListFactors(ctx context.Context) (map[string]any, error)
	AdminSaveFactor(ctx context.Context, category models.PricingFactorCategory, id uint, body map[string]any) (*models.PricingFactor, error)
	AdminDeleteFactor(ctx context.Context, id uint) error
	AdminListConfigurations(ctx context.Context) ([]*models.PricingConfiguration, error)
	AdminSaveConfiguration(ctx context.Context, id uint, req *dto.PricingConfigurationRequest) (*models.PricingConfiguration, error)
	AdminDeleteConfiguration(ctx context.Context, id uint) error
	AdminSetDefaultConfiguration(ctx context.Context, id uint) error
}

type PricingAdminFlowImpl struct {
	factorRepo        repository.PricingFactorRepository
	configurationRepo repository.PricingConfigurationRepository
}

func NewPricingAdminFlow(factorRepo repository.PricingFactorRepository, configurationRepo repository.PricingConfigurationRepository) PricingAdminFlow {
	return &PricingAdminFlowImpl{
		factorRepo:        factorRepo,
		configurationRepo: configurationRepo,
	}
}

// AdminListFactors groups every factor, active or not, under its category key. Every
// category is present, and the configuration key holds the configuration list.
func (f *PricingAdminFlowImpl) AdminListFactors(ctx context.Context) (map[string]any, error) {
	factors, err := f.factorRepo.ByFilter(ctx, models.PricingFactorFilter{})
	if err != nil {
		return nil, NewBusinessError("PRICING_FACTOR_LIST_FAILED", "Failed to list pricing factors", err)
	}
	configurations, err := f.configurationRepo.List(ctx)
	if err != nil {
		return nil, NewBusinessError("PRICING_CONFIGURATION_LIST_FAILED", "Failed to list pricing configurations", err)
	}

	grouped := make(map[string]any, len(models.PricingFactorCategories)+1)
	for _, category := range models.PricingFactorCategories {
		items := make([]*models.PricingFactor, 0)
		for _, factor := range factors {
			if factor.Category == category {
				items = append(items, factor)
			}
		}
		grouped[string(category)] = items
	}
	grouped[models.ConfigurationListingKey] = configurations
	return grouped, nil
}

// textValuesAsStrings returns body with scalar values of the text fields rendered as strings.
// Clients that coerce numeric-looking input send a name of "2024" as the number 2024.
func textValuesAsStrings(category models.PricingFactorCategory, body map[string]any) map[string]any {
	textKeys := map[string]bool{"name": true, "description": true}
	for _, d := range schema.Fields(category) {
		if d.Type == schema.FieldTypeText || d.Type == schema.FieldTypeChoice {
			textKeys[d.Key] = true
		}
	}

	out := make(map[string]any, len(body))
	for key, value := range body {
		switch value.(type) {
		case float64, json.Number, bool:
			if textKeys[key] {
				value = models.FormatValue(value)
			}
		}
		out[key] = value
	}
	return out
}

// AdminSaveFactor creates the factor when id is 0, otherwise replaces it. Body keys outside
// the base fields must belong to category.
func (f *PricingAdminFlowImpl) AdminSaveFactor(ctx context.Context, category models.PricingFactorCategory, id uint, body map[string]any) (*models.PricingFactor, error) {
	if !category.IsKnown() {
		return nil, NewBusinessErrorf("PRICING_FACTOR_CATEGORY_INVALID", "Unknown pricing factor category %q", ErrInvalidCategory, category)
	}

	body = textValuesAsStrings(category, body)
	name, _ := body["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewBusinessError("PRICING_FACTOR_NAME_REQUIRED", "Name is required", ErrFactorNameRequired)
	}

	attrs := make(map[string]any)
	var foreign []string
	for key, value := range body {
		if baseFactorKeys[key] {
			continue
		}
		if !schema.BelongsTo(category, key) {
			foreign = append(foreign, key)
			continue
		}
		attrs[key] = value
	}
	if len(foreign) > 0 {
		sort.Strings(foreign)
		return nil, NewBusinessErrorf("PRICING_FACTOR_ATTRIBUTE_INVALID",
			"Fields %s do not belong to %s factors", ErrAttributeNotInCategory, strings.Join(foreign, ", "), category.Label())
	}

	factor := &models.PricingFactor{
		ID:         id,
		Name:       name,
		Category:   category,
		IsActive:   true,
		Attributes: models.NewPricingFactorAttributes(category),
	}
	factor.Description, _ = body["description"].(string)
	if active, ok := body["is_active"].(bool); ok {
		factor.IsActive = active
	}

	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, NewBusinessError("PRICING_FACTOR_ATTRIBUTE_INVALID", "Invalid factor attributes", fmt.Errorf("%w: %w", ErrAttributeInvalid, err))
	}
	if err := json.Unmarshal(raw, factor.Attributes); err != nil {
		return nil, NewBusinessError("PRICING_FACTOR_ATTRIBUTE_INVALID", "Invalid factor attributes", fmt.Errorf("%w: %w", ErrAttributeInvalid, err))
	}

	if id == 0 {
		if err := f.factorRepo.Save(ctx, factor); err != nil {
			return nil, NewBusinessError("PRICING_FACTOR_SAVE_FAILED", "Failed to save pricing factor", err)
		}
		return factor, nil
	}

	existing, err := f.factorRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("PRICING_FACTOR_SAVE_FAILED", "Failed to save pricing factor", err)
	}
	if existing == nil {
		return nil, NewBusinessErrorf("PRICING_FACTOR_NOT_FOUND", "Pricing factor %d not found", ErrFactorNotFound, id)
	}
	if err := f.factorRepo.Update(ctx, factor); err != nil {
		return nil, NewBusinessError("PRICING_FACTOR_SAVE_FAILED", "Failed to save pricing factor", err)
	}
	return factor, nil
}

func (f *PricingAdminFlowImpl) AdminDeleteFactor(ctx context.Context, id uint) error {
	if err := f.factorRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewBusinessErrorf("PRICING_FACTOR_NOT_FOUND", "Pricing factor %d not found", ErrFactorNotFound, id)
		}
		return NewBusinessError("PRICING_FACTOR_DELETE_FAILED", "Failed to delete pricing factor", err)
	}
	return nil
}

func (f *PricingAdminFlowImpl) AdminListConfigurations(ctx context.Context) ([]*models.PricingConfiguration, error) {
	configurations, err := f.configurationRepo.List(ctx)
	if err != nil {
		return nil, NewBusinessError("PRICING_CONFIGURATION_LIST_FAILED", "Failed to list pricing configurations", err)
	}
	return configurations, nil
}

// AdminSaveConfiguration creates the configuration when id is 0, otherwise replaces it. A
// configuration saved as default becomes the only default.
func (f *PricingAdminFlowImpl) AdminSaveConfiguration(ctx context.Context, id uint, req *dto.PricingConfigurationRequest) (*models.PricingConfiguration, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewBusinessError("PRICING_CONFIGURATION_NAME_REQUIRED", "Name is required", ErrConfigurationNameRequired)
	}

	active := make(models.ActiveFactors, len(req.ActiveFactors))
	for key, ids := range req.ActiveFactors {
		category := models.PricingFactorCategory(key)
		if !category.IsKnown() {
			return nil, NewBusinessErrorf("PRICING_FACTOR_CATEGORY_INVALID", "Unknown pricing factor category %q", ErrInvalidCategory, key)
		}
		active[category] = append([]uint(nil), ids...)
	}

	cfg := &models.PricingConfiguration{
		ID:                      id,
		Name:                    name,
		IsActive:                true,
		IsDefault:               req.IsDefault,
		BasePrice:               req.BasePrice,
		BasePricePerMile:        req.BasePricePerMile,
		BasePricePerKg:          req.BasePricePerKg,
		BasePricePerCubicMeter:  req.BasePricePerCubicMeter,
		BasePricePerHour:        req.BasePricePerHour,
		MinPrice:                req.MinPrice,
		MaxPriceMultiplier:      1,
		FuelSurchargePercentage: req.FuelSurchargePercentage,
		CarbonOffsetRate:        req.CarbonOffsetRate,
		ActiveFactors:           active,
	}
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}
	if req.MaxPriceMultiplier != nil {
		cfg.MaxPriceMultiplier = *req.MaxPriceMultiplier
	}

	if id == 0 {
		if err := f.configurationRepo.Save(ctx, cfg); err != nil {
			return nil, NewBusinessError("PRICING_CONFIGURATION_SAVE_FAILED", "Failed to save pricing configuration", err)
		}
	} else {
		existing, err := f.configurationRepo.ByID(ctx, id)
		if err != nil {
			return nil, NewBusinessError("PRICING_CONFIGURATION_SAVE_FAILED", "Failed to save pricing configuration", err)
		}
		if existing == nil {
			return nil, NewBusinessErrorf("PRICING_CONFIGURATION_NOT_FOUND", "Pricing configuration %d not found", ErrConfigurationNotFound, id)
		}
		if err := f.configurationRepo.Update(ctx, cfg); err != nil {
			return nil, NewBusinessError("PRICING_CONFIGURATION_SAVE_FAILED", "Failed to save pricing configuration", err)
		}
	}

	if cfg.IsDefault {
		if err := f.configurationRepo.SetDefault(ctx, cfg.ID); err != nil {
			return nil, NewBusinessError("PRICING_CONFIGURATION_SAVE_FAILED", "Failed to save pricing configuration", err)
		}
	}
	return cfg, nil
}

// AdminDeleteConfiguration deletes the configuration, default or not.
func (f *PricingAdminFlowImpl) AdminDeleteConfiguration(ctx context.Context, id uint) error {
	if err := f.configurationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewBusinessErrorf("PRICING_CONFIGURATION_NOT_FOUND", "Pricing configuration %d not found", ErrConfigurationNotFound, id)
		}
		return NewBusinessError("PRICING_CONFIGURATION_DELETE_FAILED", "Failed to delete pricing configuration", err)
	}
	return nil
}

func (f *PricingAdminFlowImpl) AdminSetDefaultConfiguration(ctx context.Context, id uint) error {
	if id == 0 {
		return NewBusinessError("PRICING_CONFIGURATION_ID_REQUIRED", "Configuration id is required", ErrConfigurationIDRequired)
	}
	if err := f.configurationRepo.SetDefault(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewBusinessErrorf("PRICING_CONFIGURATION_NOT_FOUND", "Pricing configuration %d not found", ErrConfigurationNotFound, id)
		}
		return NewBusinessError("PRICING_CONFIGURATION_SET_DEFAULT_FAILED", "Failed to set default configuration", err)
	}
	return nil
}

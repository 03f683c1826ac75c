package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"slices"

	"github.com/amirphl/morevans-pricing/app/form"
	"github.com/amirphl/morevans-pricing/app/services"
	"github.com/amirphl/morevans-pricing/models"
	"golang.org/x/sync/errgroup"
)

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// CategoryGroup is one category of the factor listing.
type CategoryGroup struct {
	Category models.PricingFactorCategory
	Factors  []models.PricingFactor
}

// PricingSnapshot is the loaded state of the collection.
type PricingSnapshot struct {
	Configurations []models.PricingConfiguration
	Factors        []models.PricingFactor
}

// PricingCollection is the in-memory view of configurations and active factors. It is owned
// by a single caller and is not safe for concurrent use.
type PricingCollection struct {
	api            services.PricingAPI
	factorFlow     PricingFactorFlow
	configFlow     PricingConfigurationFlow
	confirmer      Confirmer
	configurations []models.PricingConfiguration
	factors        []models.PricingFactor
	loaded         bool
}

func NewPricingCollection(api services.PricingAPI, factorFlow PricingFactorFlow, configFlow PricingConfigurationFlow, confirmer Confirmer) *PricingCollection {
	return &PricingCollection{
		api:        api,
		factorFlow: factorFlow,
		configFlow: configFlow,
		confirmer:  confirmer,
	}
}

// Load fetches the configurations and the grouped factors concurrently. A failed fetch does
// not cancel the other one. On failure both lists are cleared.
func (c *PricingCollection) Load(ctx context.Context) error {
	var factors []models.PricingFactor
	var configurations []models.PricingConfiguration

	var g errgroup.Group
	g.Go(func() error {
		resp, err := c.api.Do(ctx, http.MethodGet, PricingFactorsPath, nil)
		if err != nil {
			return err
		}
		factors = decodeFactorListing(resp.Body)
		return nil
	})
	g.Go(func() error {
		resp, err := c.api.Do(ctx, http.MethodGet, PriceConfigurationsPath, nil)
		if err != nil {
			return err
		}
		configurations = decodeConfigurationListing(resp.Body)
		return nil
	})

	if err := g.Wait(); err != nil {
		c.factors = nil
		c.configurations = nil
		c.loaded = false
		return NewBusinessError("PRICING_LOAD_FAILED", "Failed to load pricing data: "+failureDetail(err), fmt.Errorf("%w: %w", ErrLoadFailed, err))
	}

	c.factors = factors
	c.configurations = configurations
	c.loaded = true
	return nil
}

func (c *PricingCollection) Loaded() bool { return c.loaded }

func (c *PricingCollection) Configurations() []models.PricingConfiguration {
	return slices.Clone(c.configurations)
}

// Factors returns the active factors, each tagged with its listing category.
func (c *PricingCollection) Factors() []models.PricingFactor {
	return slices.Clone(c.factors)
}

// FactorsByCategory groups the factors in registry order, skipping empty categories.
func (c *PricingCollection) FactorsByCategory() []CategoryGroup {
	var groups []CategoryGroup
	for _, category := range models.PricingFactorCategories {
		var items []models.PricingFactor
		for _, f := range c.factors {
			if f.Category == category {
				items = append(items, f)
			}
		}
		if len(items) > 0 {
			groups = append(groups, CategoryGroup{Category: category, Factors: items})
		}
	}
	return groups
}

// ActiveFactorCatalog is the set of factors a configuration may select.
func (c *PricingCollection) ActiveFactorCatalog() form.FactorCatalog {
	catalog := make(form.FactorCatalog)
	for _, f := range c.factors {
		catalog[f.Category] = append(catalog[f.Category], f)
	}
	return catalog
}

func (c *PricingCollection) Snapshot() PricingSnapshot {
	return PricingSnapshot{
		Configurations: c.Configurations(),
		Factors:        c.Factors(),
	}
}

func (c *PricingCollection) Factor(id uint) (models.PricingFactor, bool) {
	i := slices.IndexFunc(c.factors, func(f models.PricingFactor) bool { return f.ID == id })
	if i < 0 {
		return models.PricingFactor{}, false
	}
	return c.factors[i], true
}

func (c *PricingCollection) Configuration(id uint) (models.PricingConfiguration, bool) {
	i := slices.IndexFunc(c.configurations, func(cfg models.PricingConfiguration) bool { return cfg.ID == id })
	if i < 0 {
		return models.PricingConfiguration{}, false
	}
	return c.configurations[i], true
}

// EditFactor opens a form seeded with factor id, including its category.
func (c *PricingCollection) EditFactor(id uint) (*form.PricingFactorForm, error) {
	f, ok := c.Factor(id)
	if !ok {
		return nil, NewBusinessErrorf("PRICING_FACTOR_NOT_FOUND", "Pricing factor %d not found", ErrFactorNotFound, id)
	}
	return form.NewPricingFactorForm(&f), nil
}

func (c *PricingCollection) NewFactorForm() *form.PricingFactorForm {
	return form.NewPricingFactorForm(nil)
}

func (c *PricingCollection) EditConfiguration(id uint) (*form.PricingConfigurationForm, error) {
	cfg, ok := c.Configuration(id)
	if !ok {
		return nil, NewBusinessErrorf("PRICING_CONFIGURATION_NOT_FOUND", "Pricing configuration %d not found", ErrConfigurationNotFound, id)
	}
	return form.NewPricingConfigurationForm(&cfg, c.ActiveFactorCatalog()), nil
}

func (c *PricingCollection) NewConfigurationForm() *form.PricingConfigurationForm {
	return form.NewPricingConfigurationForm(nil, c.ActiveFactorCatalog())
}

// SubmitFactor writes the factor and then reloads the collection.
func (c *PricingCollection) SubmitFactor(ctx context.Context, f *form.PricingFactorForm) (*SubmitResult, error) {
	result, err := c.factorFlow.SubmitFactor(ctx, f)
	if err != nil {
		return nil, err
	}
	return result, c.Load(ctx)
}

// SubmitConfiguration writes the configuration and then reloads the collection.
func (c *PricingCollection) SubmitConfiguration(ctx context.Context, f *form.PricingConfigurationForm) (*SubmitResult, error) {
	result, err := c.configFlow.SubmitConfiguration(ctx, f)
	if err != nil {
		return nil, err
	}
	return result, c.Load(ctx)
}

// DeleteFactor deletes factor id after confirmation and drops it from the local list
// without refetching. It reports false when the user declined.
func (c *PricingCollection) DeleteFactor(ctx context.Context, id uint) (bool, error) {
	f, ok := c.Factor(id)
	if !ok {
		return false, NewBusinessErrorf("PRICING_FACTOR_NOT_FOUND", "Pricing factor %d not found", ErrFactorNotFound, id)
	}
	if !c.confirm(fmt.Sprintf("Are you sure you want to delete pricing factor %q?", f.Name)) {
		return false, nil
	}
	if err := c.factorFlow.DeleteFactor(ctx, id); err != nil {
		return false, err
	}
	c.factors = slices.DeleteFunc(c.factors, func(f models.PricingFactor) bool { return f.ID == id })
	return true, nil
}

// CanDeleteConfiguration reports whether the delete control is enabled for cfg.
func (c *PricingCollection) CanDeleteConfiguration(cfg models.PricingConfiguration) bool {
	return !cfg.IsDefault
}

// DeleteConfiguration deletes configuration id after confirmation and drops it locally.
// The default configuration is refused before any call is made.
func (c *PricingCollection) DeleteConfiguration(ctx context.Context, id uint) (bool, error) {
	cfg, ok := c.Configuration(id)
	if !ok {
		return false, NewBusinessErrorf("PRICING_CONFIGURATION_NOT_FOUND", "Pricing configuration %d not found", ErrConfigurationNotFound, id)
	}
	if !c.CanDeleteConfiguration(cfg) {
		return false, NewBusinessError("PRICING_CONFIGURATION_DEFAULT_DELETE", "The default configuration cannot be deleted", ErrDefaultConfigurationDelete)
	}
	if !c.confirm(fmt.Sprintf("Are you sure you want to delete configuration %q?", cfg.Name)) {
		return false, nil
	}
	if err := c.configFlow.DeleteConfiguration(ctx, id); err != nil {
		return false, err
	}
	c.configurations = slices.DeleteFunc(c.configurations, func(cfg models.PricingConfiguration) bool { return cfg.ID == id })
	return true, nil
}

// SetDefaultConfiguration makes id the default and then refetches both collections.
func (c *PricingCollection) SetDefaultConfiguration(ctx context.Context, id uint) error {
	if err := c.configFlow.SetDefaultConfiguration(ctx, id); err != nil {
		return err
	}
	return c.Load(ctx)
}

func (c *PricingCollection) confirm(prompt string) bool {
	if c.confirmer == nil {
		return false
	}
	return c.confirmer.Confirm(prompt)
}

// decodeFactorListing flattens the grouped listing into active factors in registry order.
// Missing categories, non-array values and undecodable items are skipped.
func decodeFactorListing(body []byte) []models.PricingFactor {
	var grouped map[string]json.RawMessage
	if err := json.Unmarshal(body, &grouped); err != nil {
		log.Printf("pricing factor listing is not an object: %v", err)
		return nil
	}

	var factors []models.PricingFactor
	for _, category := range models.PricingFactorCategories {
		raw, ok := grouped[string(category)]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Printf("pricing factor listing: %s is not an array", category)
			continue
		}
		for _, item := range items {
			f, err := models.DecodePricingFactor(item, category)
			if err != nil {
				log.Printf("pricing factor listing: skipping %s item: %v", category, err)
				continue
			}
			if f.IsActive {
				factors = append(factors, f)
			}
		}
	}
	return factors
}

// decodeConfigurationListing decodes the configuration array, skipping undecodable items.
func decodeConfigurationListing(body []byte) []models.PricingConfiguration {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		log.Printf("pricing configuration listing is not an array: %v", err)
		return nil
	}

	configurations := make([]models.PricingConfiguration, 0, len(items))
	for _, item := range items {
		var cfg models.PricingConfiguration
		if err := json.Unmarshal(item, &cfg); err != nil {
			log.Printf("pricing configuration listing: skipping item: %v", err)
			continue
		}
		configurations = append(configurations, cfg)
	}
	return configurations
}

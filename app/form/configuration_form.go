package form

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/amirphl/morevans-pricing/app/schema"
	"github.com/amirphl/morevans-pricing/models"
)

var ErrFactorNotInCatalog = errors.New("factor is not an active factor of this category")

// FactorCatalog lists the active factors a configuration may select, per category.
type FactorCatalog map[models.PricingFactorCategory][]models.PricingFactor

// Has reports whether the catalog offers factor id under category.
func (c FactorCatalog) Has(category models.PricingFactorCategory, id uint) bool {
	return slices.ContainsFunc(c[category], func(f models.PricingFactor) bool { return f.ID == id })
}

// ConfigurationFormValues is the editing state of a pricing configuration.
type ConfigurationFormValues struct {
	Name          string
	IsActive      bool
	IsDefault     bool
	Fields        map[string]string
	ActiveFactors models.ActiveFactors
}

// PricingConfigurationForm is the editing state of a single pricing configuration.
type PricingConfigurationForm struct {
	id      uint
	values  ConfigurationFormValues
	catalog FactorCatalog
	touched map[string]bool
	errors  map[string]string
}

// NewPricingConfigurationForm starts a form from an existing configuration, or a create
// form when initial is nil. Zero prices fall back to the field defaults.
func NewPricingConfigurationForm(initial *models.PricingConfiguration, catalog FactorCatalog) *PricingConfigurationForm {
	f := &PricingConfigurationForm{
		values: ConfigurationFormValues{
			IsActive:      true,
			Fields:        schema.ConfigurationDefaults(),
			ActiveFactors: make(models.ActiveFactors),
		},
		catalog: catalog,
		touched: make(map[string]bool),
		errors:  make(map[string]string),
	}
	if initial == nil {
		return f
	}

	f.id = initial.ID
	f.values.Name = initial.Name
	f.values.IsActive = initial.IsActive
	f.values.IsDefault = initial.IsDefault
	for key, v := range initial.NumericValues() {
		if v != 0 {
			f.values.Fields[key] = models.FormatValue(v)
		}
	}
	f.values.ActiveFactors = initial.ActiveFactors.Clone()
	return f
}

func (f *PricingConfigurationForm) ID() uint { return f.id }

func (f *PricingConfigurationForm) IsEdit() bool { return f.id != 0 }

// SetField assigns a raw value; name, is_active and is_default have their own slots.
func (f *PricingConfigurationForm) SetField(key, value string) {
	switch key {
	case "name":
		f.values.Name = value
	case "is_active":
		if b, err := strconv.ParseBool(value); err == nil {
			f.values.IsActive = b
		}
	case "is_default":
		if b, err := strconv.ParseBool(value); err == nil {
			f.values.IsDefault = b
		}
	default:
		f.values.Fields[key] = value
	}
	f.touched[key] = true
}

// ToggleFactor adds or removes factor id in category. Adding requires the id to be an
// active catalog entry; removing is always allowed so stale ids can be cleaned up.
func (f *PricingConfigurationForm) ToggleFactor(category models.PricingFactorCategory, id uint) error {
	ids := f.values.ActiveFactors[category]
	if i := slices.Index(ids, id); i >= 0 {
		f.values.ActiveFactors[category] = slices.Delete(slices.Clone(ids), i, i+1)
		f.touched["active_factors"] = true
		return nil
	}
	if f.catalog != nil && !f.catalog.Has(category, id) {
		return fmt.Errorf("%s factor %d: %w", category, id, ErrFactorNotInCatalog)
	}
	f.values.ActiveFactors[category] = append(slices.Clone(ids), id)
	f.touched["active_factors"] = true
	return nil
}

func (f *PricingConfigurationForm) Touched(key string) bool { return f.touched[key] }

func (f *PricingConfigurationForm) Values() ConfigurationFormValues {
	v := f.values
	v.Fields = maps.Clone(v.Fields)
	v.ActiveFactors = v.ActiveFactors.Clone()
	return v
}

// Validate checks name, the price fields and the factor selection.
func (f *PricingConfigurationForm) Validate() map[string]string {
	errs := make(map[string]string)
	if f.values.Name == "" {
		errs["name"] = "Name is required"
	}
	for _, d := range schema.ConfigurationFields() {
		if msg := checkField(d, f.values.Fields[d.Key]); msg != "" {
			errs[d.Key] = msg
		}
	}
	if !f.values.ActiveFactors.HasAny() {
		errs["active_factors"] = "At least one factor must be selected"
	}
	if f.catalog != nil {
		for _, category := range models.PricingFactorCategories {
			for _, id := range f.values.ActiveFactors[category] {
				if !f.catalog.Has(category, id) {
					errs["active_factors."+string(category)] = fmt.Sprintf("%s factor %d is not active", category.Label(), id)
					break
				}
			}
		}
	}
	f.errors = errs
	return copyErrors(errs)
}

func (f *PricingConfigurationForm) Errors() map[string]string { return copyErrors(f.errors) }

// CanSubmit requires a fully valid form.
func (f *PricingConfigurationForm) CanSubmit() bool {
	return len(f.Validate()) == 0
}

// Payload is the request body for the configuration endpoints. Price fields that parse as
// numbers are sent as numbers.
func (f *PricingConfigurationForm) Payload() map[string]any {
	payload := map[string]any{
		"name":           f.values.Name,
		"is_active":      f.values.IsActive,
		"is_default":     f.values.IsDefault,
		"active_factors": f.values.ActiveFactors.Clone(),
	}
	for _, d := range schema.ConfigurationFields() {
		raw := f.values.Fields[d.Key]
		if raw == "" {
			continue
		}
		if n, ok := parseNumber(raw); ok {
			payload[d.Key] = n
		} else {
			payload[d.Key] = raw
		}
	}
	return payload
}

package form

import (
	"maps"
	"strconv"

	"github.com/amirphl/morevans-pricing/app/schema"
	"github.com/amirphl/morevans-pricing/models"
)

// FactorFormValues is the flat editing state of a pricing factor. Fields carries every
// category key, so the shape stays the same whichever category is selected.
type FactorFormValues struct {
	Name        string
	Description string
	Category    models.PricingFactorCategory
	IsActive    bool
	Fields      map[string]string
}

func (v FactorFormValues) clone() FactorFormValues {
	v.Fields = maps.Clone(v.Fields)
	return v
}

var baseFactorFields = []schema.FieldDescriptor{
	{Key: "name", Label: "Name", Type: schema.FieldTypeText, Required: true},
	{Key: "description", Label: "Description", Type: schema.FieldTypeText, Required: true},
	{Key: "category", Label: "Category", Type: schema.FieldTypeText, Required: true},
}

// PricingFactorForm is the editing state of a single pricing factor.
type PricingFactorForm struct {
	id      uint
	values  FactorFormValues
	touched map[string]bool
	errors  map[string]string
}

// NewPricingFactorForm starts a form from an existing factor, or an empty create form when
// initial is nil.
func NewPricingFactorForm(initial *models.PricingFactor) *PricingFactorForm {
	f := &PricingFactorForm{
		values: FactorFormValues{
			IsActive: true,
			Fields:   make(map[string]string),
		},
		touched: make(map[string]bool),
		errors:  make(map[string]string),
	}
	for _, key := range schema.AllKeys() {
		f.values.Fields[key] = ""
	}
	if initial == nil {
		return f
	}

	f.id = initial.ID
	f.values.Name = initial.Name
	f.values.Description = initial.Description
	f.values.Category = initial.Category
	f.values.IsActive = initial.IsActive
	for key, value := range initial.AttributeStrings() {
		f.values.Fields[key] = value
	}
	return f
}

// ID is the backend id of the edited factor, 0 for a create form.
func (f *PricingFactorForm) ID() uint { return f.id }

func (f *PricingFactorForm) IsEdit() bool { return f.id != 0 }

func (f *PricingFactorForm) Category() models.PricingFactorCategory { return f.values.Category }

// SetCategory switches the form to c: the previous category's fields are cleared and the
// new category's defaults are applied. Selecting the current category again is a no-op.
func (f *PricingFactorForm) SetCategory(c models.PricingFactorCategory) {
	if c == f.values.Category {
		return
	}
	for _, key := range schema.Keys(f.values.Category) {
		f.values.Fields[key] = ""
	}
	for key, def := range schema.Defaults(c) {
		f.values.Fields[key] = def
	}
	f.values.Category = c
	f.touched["category"] = true
	f.errors = make(map[string]string)
}

// SetField assigns a raw value. The base keys name, description, category and is_active
// are routed to their own slots; every other key lands in Fields.
func (f *PricingFactorForm) SetField(key, value string) {
	switch key {
	case "name":
		f.values.Name = value
	case "description":
		f.values.Description = value
	case "category":
		f.SetCategory(models.PricingFactorCategory(value))
	case "is_active":
		if b, err := strconv.ParseBool(value); err == nil {
			f.values.IsActive = b
		}
	default:
		f.values.Fields[key] = value
	}
	f.touched[key] = true
}

func (f *PricingFactorForm) SetActive(active bool) {
	f.values.IsActive = active
	f.touched["is_active"] = true
}

func (f *PricingFactorForm) Touched(key string) bool { return f.touched[key] }

// Values returns a copy of the current editing state.
func (f *PricingFactorForm) Values() FactorFormValues { return f.values.clone() }

// Validate checks the base fields and the current category's fields, keeping the result
// as the form's errors.
func (f *PricingFactorForm) Validate() map[string]string {
	errs := make(map[string]string)
	for _, d := range baseFactorFields {
		if msg := checkField(d, f.baseValue(d.Key)); msg != "" {
			errs[d.Key] = msg
		}
	}
	if f.values.Category != "" && !f.values.Category.IsKnown() {
		errs["category"] = "Category must be one of the supported categories"
	}
	for _, d := range schema.Fields(f.values.Category) {
		if msg := checkField(d, f.values.Fields[d.Key]); msg != "" {
			errs[d.Key] = msg
		}
	}
	f.errors = errs
	return copyErrors(errs)
}

// Errors returns the result of the last Validate call.
func (f *PricingFactorForm) Errors() map[string]string { return copyErrors(f.errors) }

// CanSubmit reports whether the base required fields are present. Category field errors
// are advisory and never block a submit.
func (f *PricingFactorForm) CanSubmit() bool {
	for _, d := range baseFactorFields {
		if checkField(d, f.baseValue(d.Key)) != "" {
			return false
		}
	}
	return true
}

// Payload projects the current state for the selected category.
func (f *PricingFactorForm) Payload() map[string]any {
	return Project(f.values, f.values.Category)
}

func (f *PricingFactorForm) baseValue(key string) string {
	switch key {
	case "name":
		return f.values.Name
	case "description":
		return f.values.Description
	case "category":
		return string(f.values.Category)
	}
	return ""
}

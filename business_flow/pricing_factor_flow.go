package businessflow

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/amirphl/morevans-pricing/app/form"
	"github.com/amirphl/morevans-pricing/app/services"
	"github.com/amirphl/morevans-pricing/models"
)

// Backend paths of the pricing admin API
const (
	PricingFactorsPath        = "/admin/pricing-factors/"
	PriceConfigurationsPath   = "/admin/price-configurations/"
	PricingConfigurationsPath = "/admin/pricing/configurations/"
	SetDefaultPath            = "/admin/pricing/configurations/set-default/"
)

// factorEndpointSlugs maps a category to its URL slug. It is kept apart from the schema
// registry and must list every category the registry knows.
var factorEndpointSlugs = map[models.PricingFactorCategory]string{
	models.CategoryDistance:            "distance",
	models.CategoryWeight:              "weight",
	models.CategoryTime:                "time",
	models.CategoryWeather:             "weather",
	models.CategoryVehicleType:         "vehicle-type",
	models.CategorySpecialRequirements: "special-requirements",
	models.CategoryLocation:            "location",
	models.CategoryServiceLevel:        "service-level",
	models.CategoryStaffRequired:       "staff-required",
	models.CategoryPropertyType:        "property-type",
	models.CategoryInsurance:           "insurance",
	models.CategoryLoadingTime:         "loading-time",
}

// FactorEndpointSlug returns the URL slug of category.
func FactorEndpointSlug(category models.PricingFactorCategory) (string, bool) {
	slug, ok := factorEndpointSlugs[category]
	return slug, ok
}

// CategoryForSlug is the reverse of FactorEndpointSlug.
func CategoryForSlug(slug string) (models.PricingFactorCategory, bool) {
	for category, s := range factorEndpointSlugs {
		if s == slug {
			return category, true
		}
	}
	return "", false
}

// SubmitResult describes an accepted create or update. Warnings holds the advisory field
// messages that did not block the submit.
type SubmitResult struct {
	StatusCode int
	Created    bool
	Body       []byte
	Warnings   map[string]string
}

// PricingFactorFlow sends pricing factor changes to the backend.
type PricingFactorFlow interface {
	SubmitFactor(ctx context.Context, f *form.PricingFactorForm) (*SubmitResult, error)
	SubmitFactorPayload(ctx context.Context, payload map[string]any, existingID uint, category models.PricingFactorCategory) (*SubmitResult, error)
	DeleteFactor(ctx context.Context, id uint) error
}

type PricingFactorFlowImpl struct {
	api services.PricingAPI
}

func NewPricingFactorFlow(api services.PricingAPI) PricingFactorFlow {
	return &PricingFactorFlowImpl{api: api}
}

// SubmitFactor submits the form if its base fields are present. Category field errors are
// returned as warnings and never block.
func (f *PricingFactorFlowImpl) SubmitFactor(ctx context.Context, pf *form.PricingFactorForm) (*SubmitResult, error) {
	errs := pf.Validate()
	if !pf.CanSubmit() {
		return nil, NewBusinessError("PRICING_FACTOR_REQUIRED_FIELDS", "Please fill in all required fields", submitBlocked(errs))
	}

	result, err := f.SubmitFactorPayload(ctx, pf.Payload(), pf.ID(), pf.Category())
	if err != nil {
		return nil, err
	}
	result.Warnings = errs
	return result, nil
}

// SubmitFactorPayload creates the factor when existingID is 0, otherwise updates it.
func (f *PricingFactorFlowImpl) SubmitFactorPayload(ctx context.Context, payload map[string]any, existingID uint, category models.PricingFactorCategory) (*SubmitResult, error) {
	slug, ok := FactorEndpointSlug(category)
	if !ok {
		return nil, NewBusinessErrorf("PRICING_FACTOR_CATEGORY_INVALID", "Unknown pricing factor category %q", ErrInvalidCategory, category)
	}

	method, path := http.MethodPost, PricingFactorsPath+slug+"/"
	if existingID != 0 {
		method, path = http.MethodPut, path+formatID(existingID)+"/"
	}

	return submit(ctx, f.api, method, path, payload, "PRICING_FACTOR_SAVE_FAILED", "Failed to save pricing factor")
}

func (f *PricingFactorFlowImpl) DeleteFactor(ctx context.Context, id uint) error {
	if _, err := f.api.Do(ctx, http.MethodDelete, PricingFactorsPath+formatID(id)+"/", nil); err != nil {
		return NewBusinessError("PRICING_FACTOR_DELETE_FAILED", "Failed to delete factor: "+failureDetail(err), err)
	}
	return nil
}

// submit performs a create or update call. Only 200 and 201 count as success; a rejected
// call surfaces the server message when there is one, otherwise fallback.
func submit(ctx context.Context, api services.PricingAPI, method, path string, payload map[string]any, code, fallback string) (*SubmitResult, error) {
	resp, err := api.Do(ctx, method, path, payload)
	if err != nil {
		message := fallback
		if serverMessage, ok := services.ServerMessage(err); ok {
			message = serverMessage
		}
		return nil, NewBusinessError(code, message, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, NewBusinessError(code, fallback, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	return &SubmitResult{
		StatusCode: resp.StatusCode,
		Created:    method == http.MethodPost,
		Body:       resp.Body,
	}, nil
}

// failureDetail is the server message of err, or err itself.
func failureDetail(err error) string {
	if message, ok := services.ServerMessage(err); ok {
		return message
	}
	return err.Error()
}

func submitBlocked(errs map[string]string) error {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%w: %v", ErrSubmitBlocked, keys)
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

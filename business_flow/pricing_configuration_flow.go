package businessflow

import (
	"context"
	"net/http"

	"github.com/amirphl/morevans-pricing/app/dto"
	"github.com/amirphl/morevans-pricing/app/form"
	"github.com/amirphl/morevans-pricing/app/services"
)

// PricingConfigurationFlow sends pricing configuration changes to the backend.
type PricingConfigurationFlow interface {
	SubmitConfiguration(ctx context.Context, f *form.PricingConfigurationForm) (*SubmitResult, error)
	SubmitConfigurationPayload(ctx context.Context, payload map[string]any, existingID uint) (*SubmitResult, error)
	DeleteConfiguration(ctx context.Context, id uint) error
	SetDefaultConfiguration(ctx context.Context, id uint) error
}

type PricingConfigurationFlowImpl struct {
	api services.PricingAPI
}

func NewPricingConfigurationFlow(api services.PricingAPI) PricingConfigurationFlow {
	return &PricingConfigurationFlowImpl{api: api}
}

// SubmitConfiguration submits the form only when it is fully valid.
func (f *PricingConfigurationFlowImpl) SubmitConfiguration(ctx context.Context, cf *form.PricingConfigurationForm) (*SubmitResult, error) {
	if errs := cf.Validate(); len(errs) > 0 {
		return nil, NewBusinessError("PRICING_CONFIGURATION_INVALID", "Please correct the highlighted fields", submitBlocked(errs))
	}
	return f.SubmitConfigurationPayload(ctx, cf.Payload(), cf.ID())
}

func (f *PricingConfigurationFlowImpl) SubmitConfigurationPayload(ctx context.Context, payload map[string]any, existingID uint) (*SubmitResult, error) {
	method, path := http.MethodPost, PricingConfigurationsPath
	if existingID != 0 {
		method, path = http.MethodPut, path+formatID(existingID)+"/"
	}
	return submit(ctx, f.api, method, path, payload, "PRICING_CONFIGURATION_SAVE_FAILED", "Failed to save pricing configuration")
}

func (f *PricingConfigurationFlowImpl) DeleteConfiguration(ctx context.Context, id uint) error {
	if _, err := f.api.Do(ctx, http.MethodDelete, PricingConfigurationsPath+formatID(id)+"/", nil); err != nil {
		return NewBusinessError("PRICING_CONFIGURATION_DELETE_FAILED", "Failed to delete configuration: "+failureDetail(err), err)
	}
	return nil
}

// SetDefaultConfiguration asks the backend to make id the only default configuration.
func (f *PricingConfigurationFlowImpl) SetDefaultConfiguration(ctx context.Context, id uint) error {
	if id == 0 {
		return NewBusinessError("PRICING_CONFIGURATION_ID_REQUIRED", "Configuration id is required", ErrConfigurationIDRequired)
	}
	if _, err := f.api.Do(ctx, http.MethodPatch, SetDefaultPath, dto.SetDefaultConfigurationRequest{ConfigurationID: id}); err != nil {
		return NewBusinessError("PRICING_CONFIGURATION_SET_DEFAULT_FAILED", "Failed to set default configuration: "+failureDetail(err), err)
	}
	return nil
}

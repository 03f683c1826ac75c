package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/amirphl/morevans-pricing/app/services"
	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/utils"
)

// DistanceFactor builds an active distance factor
func DistanceFactor(id uint, name string, rate float64) models.PricingFactor {
	return models.PricingFactor{
		ID:          id,
		Name:        name,
		Description: name + " rate",
		Category:    models.CategoryDistance,
		IsActive:    true,
		Attributes: &models.DistanceAttributes{
			BaseRatePerKm: utils.ToPtr(models.Decimal(rate)),
			MinDistance:   utils.ToPtr[models.Decimal](0.0),
			MaxDistance:   utils.ToPtr[models.Decimal](100.0),
		},
	}
}

// TimeFactor builds an active time factor
func TimeFactor(id uint, name string, peak float64) models.PricingFactor {
	return models.PricingFactor{
		ID:          id,
		Name:        name,
		Description: name + " surcharge",
		Category:    models.CategoryTime,
		IsActive:    true,
		Attributes: &models.TimeAttributes{
			PeakHourMultiplier: utils.ToPtr(models.Decimal(peak)),
		},
	}
}

// Configuration builds an active configuration selecting the given distance factors
func Configuration(id uint, name string, isDefault bool, distanceIDs ...uint) models.PricingConfiguration {
	return models.PricingConfiguration{
		ID:                 id,
		Name:               name,
		IsActive:           true,
		IsDefault:          isDefault,
		BasePrice:          25,
		MinPrice:           40,
		MaxPriceMultiplier: 3,
		ActiveFactors:      models.ActiveFactors{models.CategoryDistance: distanceIDs},
	}
}

// FactorListing renders factors the way the backend groups them, with an empty
// configuration entry
func FactorListing(factors ...models.PricingFactor) []byte {
	grouped := map[string]any{models.ConfigurationListingKey: []any{}}
	for _, f := range factors {
		items, _ := grouped[string(f.Category)].([]any)
		grouped[string(f.Category)] = append(items, f)
	}
	data, err := json.Marshal(grouped)
	if err != nil {
		panic(fmt.Sprintf("failed to render factor listing: %v", err))
	}
	return data
}

// ConfigurationListing renders configurations as the backend array
func ConfigurationListing(configurations ...models.PricingConfiguration) []byte {
	if configurations == nil {
		configurations = []models.PricingConfiguration{}
	}
	data, err := json.Marshal(configurations)
	if err != nil {
		panic(fmt.Sprintf("failed to render configuration listing: %v", err))
	}
	return data
}

// APICall is one request seen by FakePricingAPI. Body is the request body after a JSON
// round trip, so numbers are float64.
type APICall struct {
	Method string
	Path   string
	Body   map[string]any
}

type scripted struct {
	resp *services.APIResponse
	err  error
}

// FakePricingAPI answers requests from a script keyed by method and path. Unscripted
// requests get 404. Safe for concurrent use.
type FakePricingAPI struct {
	mu     sync.Mutex
	script map[string]scripted
	calls  []APICall
}

func NewFakePricingAPI() *FakePricingAPI {
	return &FakePricingAPI{script: make(map[string]scripted)}
}

// Respond scripts a successful response
func (f *FakePricingAPI) Respond(method, path string, status int, body []byte) *FakePricingAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[method+" "+path] = scripted{resp: &services.APIResponse{StatusCode: status, Body: body}}
	return f
}

// Fail scripts a failure
func (f *FakePricingAPI) Fail(method, path string, err error) *FakePricingAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[method+" "+path] = scripted{err: err}
	return f
}

// Reject scripts a non-2xx response carrying message
func (f *FakePricingAPI) Reject(method, path string, status int, message string) *FakePricingAPI {
	return f.Fail(method, path, &services.APIError{StatusCode: status, Message: message})
}

func (f *FakePricingAPI) Do(ctx context.Context, method, path string, body any) (*services.APIResponse, error) {
	call := APICall{Method: method, Path: path}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &services.APIError{Err: err}
		}
		if err := json.Unmarshal(data, &call.Body); err != nil {
			return nil, &services.APIError{Err: err}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	s, ok := f.script[method+" "+path]
	if !ok {
		return nil, &services.APIError{StatusCode: http.StatusNotFound, Message: "Not found"}
	}
	if s.err != nil {
		return nil, s.err
	}
	resp := *s.resp
	return &resp, nil
}

// Calls returns the recorded requests in arrival order
func (f *FakePricingAPI) Calls() []APICall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]APICall(nil), f.calls...)
}

// CallsTo returns the recorded requests matching method and path
func (f *FakePricingAPI) CallsTo(method, path string) []APICall {
	var out []APICall
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded requests but keeps the script
func (f *FakePricingAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

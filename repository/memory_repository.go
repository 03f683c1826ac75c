package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/amirphl/morevans-pricing/models"
)

// MemoryPricingFactorRepository keeps factors in process memory. Stored values are copied on
// the way in and out.
type MemoryPricingFactorRepository struct {
	mu      sync.RWMutex
	nextID  uint
	factors map[uint]*models.PricingFactor
}

func NewMemoryPricingFactorRepository() *MemoryPricingFactorRepository {
	return &MemoryPricingFactorRepository{
		nextID:  1,
		factors: make(map[uint]*models.PricingFactor),
	}
}

func (r *MemoryPricingFactorRepository) ByID(ctx context.Context, id uint) (*models.PricingFactor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factors[id]
	if !ok {
		return nil, nil
	}
	return cloneFactor(f)
}

// ByFilter returns the matching factors ordered by id
func (r *MemoryPricingFactorRepository) ByFilter(ctx context.Context, filter models.PricingFactorFilter) ([]*models.PricingFactor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.PricingFactor, 0, len(r.factors))
	for _, f := range r.factors {
		if filter.Category != nil && f.Category != *filter.Category {
			continue
		}
		if filter.IsActive != nil && f.IsActive != *filter.IsActive {
			continue
		}
		c, err := cloneFactor(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save inserts factor and assigns its id
func (r *MemoryPricingFactorRepository) Save(ctx context.Context, factor *models.PricingFactor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := cloneFactor(factor)
	if err != nil {
		return err
	}
	stored.ID = r.nextID
	r.nextID++
	r.factors[stored.ID] = stored
	factor.ID = stored.ID
	return nil
}

func (r *MemoryPricingFactorRepository) Update(ctx context.Context, factor *models.PricingFactor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factors[factor.ID]; !ok {
		return ErrNotFound
	}
	stored, err := cloneFactor(factor)
	if err != nil {
		return err
	}
	r.factors[factor.ID] = stored
	return nil
}

func (r *MemoryPricingFactorRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factors[id]; !ok {
		return ErrNotFound
	}
	delete(r.factors, id)
	return nil
}

// MemoryPricingConfigurationRepository keeps configurations in process memory
type MemoryPricingConfigurationRepository struct {
	mu             sync.RWMutex
	nextID         uint
	configurations map[uint]*models.PricingConfiguration
}

func NewMemoryPricingConfigurationRepository() *MemoryPricingConfigurationRepository {
	return &MemoryPricingConfigurationRepository{
		nextID:         1,
		configurations: make(map[uint]*models.PricingConfiguration),
	}
}

func (r *MemoryPricingConfigurationRepository) ByID(ctx context.Context, id uint) (*models.PricingConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configurations[id]
	if !ok {
		return nil, nil
	}
	return cloneConfiguration(cfg), nil
}

func (r *MemoryPricingConfigurationRepository) List(ctx context.Context) ([]*models.PricingConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.PricingConfiguration, 0, len(r.configurations))
	for _, cfg := range r.configurations {
		out = append(out, cloneConfiguration(cfg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryPricingConfigurationRepository) Save(ctx context.Context, cfg *models.PricingConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneConfiguration(cfg)
	stored.ID = r.nextID
	r.nextID++
	r.configurations[stored.ID] = stored
	cfg.ID = stored.ID
	return nil
}

func (r *MemoryPricingConfigurationRepository) Update(ctx context.Context, cfg *models.PricingConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configurations[cfg.ID]; !ok {
		return ErrNotFound
	}
	r.configurations[cfg.ID] = cloneConfiguration(cfg)
	return nil
}

func (r *MemoryPricingConfigurationRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configurations[id]; !ok {
		return ErrNotFound
	}
	delete(r.configurations, id)
	return nil
}

func (r *MemoryPricingConfigurationRepository) SetDefault(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configurations[id]; !ok {
		return ErrNotFound
	}
	for cid, cfg := range r.configurations {
		cfg.IsDefault = cid == id
	}
	return nil
}

// cloneFactor deep copies f through its wire form so the attribute pointers are not shared
func cloneFactor(f *models.PricingFactor) (*models.PricingFactor, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to copy pricing factor: %w", err)
	}
	var out models.PricingFactor
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to copy pricing factor: %w", err)
	}
	out.ID = f.ID
	return &out, nil
}

func cloneConfiguration(cfg *models.PricingConfiguration) *models.PricingConfiguration {
	out := *cfg
	out.ActiveFactors = cfg.ActiveFactors.Clone()
	return &out
}

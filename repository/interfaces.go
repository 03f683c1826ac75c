// Package repository provides the storage of the mock pricing backend: an in-memory store and
// a gorm/postgres store behind the same interfaces
package repository

import (
	"context"
	"errors"

	"github.com/amirphl/morevans-pricing/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

var ErrNotFound = errors.New("record not found")

// PricingFactorRepository defines operations for pricing factors. ByID returns nil, nil when
// the factor does not exist.
type PricingFactorRepository interface {
	ByID(ctx context.Context, id uint) (*models.PricingFactor, error)
	ByFilter(ctx context.Context, filter models.PricingFactorFilter) ([]*models.PricingFactor, error)
	Save(ctx context.Context, factor *models.PricingFactor) error
	Update(ctx context.Context, factor *models.PricingFactor) error
	Delete(ctx context.Context, id uint) error
}

// PricingConfigurationRepository defines operations for pricing configurations
type PricingConfigurationRepository interface {
	ByID(ctx context.Context, id uint) (*models.PricingConfiguration, error)
	List(ctx context.Context) ([]*models.PricingConfiguration, error)
	Save(ctx context.Context, cfg *models.PricingConfiguration) error
	Update(ctx context.Context, cfg *models.PricingConfiguration) error
	Delete(ctx context.Context, id uint) error
	// SetDefault marks id as default and clears the flag everywhere else
	SetDefault(ctx context.Context, id uint) error
}

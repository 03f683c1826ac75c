package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/morevans-pricing/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// pricingConfigurationRecord is the pricing_configurations row
type pricingConfigurationRecord struct {
	ID                      uint   `gorm:"primaryKey"`
	Name                    string `gorm:"size:255;not null"`
	IsActive                bool   `gorm:"not null;default:true"`
	IsDefault               bool   `gorm:"not null;default:false;index"`
	BasePrice               float64
	BasePricePerMile        float64
	BasePricePerKg          float64
	BasePricePerCubicMeter  float64
	BasePricePerHour        float64
	MinPrice                float64
	MaxPriceMultiplier      float64 `gorm:"not null;default:1"`
	FuelSurchargePercentage float64
	CarbonOffsetRate        float64
	ActiveFactors           datatypes.JSONType[models.ActiveFactors] `gorm:"type:jsonb;not null"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (pricingConfigurationRecord) TableName() string { return "pricing_configurations" }

func pricingConfigurationToRecord(cfg *models.PricingConfiguration) *pricingConfigurationRecord {
	return &pricingConfigurationRecord{
		ID:                      cfg.ID,
		Name:                    cfg.Name,
		IsActive:                cfg.IsActive,
		IsDefault:               cfg.IsDefault,
		BasePrice:               cfg.BasePrice.Float64(),
		BasePricePerMile:        cfg.BasePricePerMile.Float64(),
		BasePricePerKg:          cfg.BasePricePerKg.Float64(),
		BasePricePerCubicMeter:  cfg.BasePricePerCubicMeter.Float64(),
		BasePricePerHour:        cfg.BasePricePerHour.Float64(),
		MinPrice:                cfg.MinPrice.Float64(),
		MaxPriceMultiplier:      cfg.MaxPriceMultiplier.Float64(),
		FuelSurchargePercentage: cfg.FuelSurchargePercentage.Float64(),
		CarbonOffsetRate:        cfg.CarbonOffsetRate.Float64(),
		ActiveFactors:           datatypes.NewJSONType(cfg.ActiveFactors.Clone()),
	}
}

func pricingConfigurationFromRecord(r *pricingConfigurationRecord) *models.PricingConfiguration {
	return &models.PricingConfiguration{
		ID:                      r.ID,
		Name:                    r.Name,
		IsActive:                r.IsActive,
		IsDefault:               r.IsDefault,
		BasePrice:               models.Decimal(r.BasePrice),
		BasePricePerMile:        models.Decimal(r.BasePricePerMile),
		BasePricePerKg:          models.Decimal(r.BasePricePerKg),
		BasePricePerCubicMeter:  models.Decimal(r.BasePricePerCubicMeter),
		BasePricePerHour:        models.Decimal(r.BasePricePerHour),
		MinPrice:                models.Decimal(r.MinPrice),
		MaxPriceMultiplier:      models.Decimal(r.MaxPriceMultiplier),
		FuelSurchargePercentage: models.Decimal(r.FuelSurchargePercentage),
		CarbonOffsetRate:        models.Decimal(r.CarbonOffsetRate),
		ActiveFactors:           r.ActiveFactors.Data().Clone(),
	}
}

// PricingConfigurationRepositoryImpl implements PricingConfigurationRepository on gorm
type PricingConfigurationRepositoryImpl struct {
	*BaseRepository[pricingConfigurationRecord]
}

// NewPricingConfigurationRepository creates a new repository for pricing configurations
func NewPricingConfigurationRepository(db *gorm.DB) PricingConfigurationRepository {
	return &PricingConfigurationRepositoryImpl{
		BaseRepository: NewBaseRepository[pricingConfigurationRecord](db),
	}
}

func (r *PricingConfigurationRepositoryImpl) ByID(ctx context.Context, id uint) (*models.PricingConfiguration, error) {
	row, err := r.byID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return pricingConfigurationFromRecord(row), nil
}

func (r *PricingConfigurationRepositoryImpl) List(ctx context.Context) ([]*models.PricingConfiguration, error) {
	var rows []*pricingConfigurationRecord
	if err := r.getDB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pricing configurations: %w", err)
	}
	out := make([]*models.PricingConfiguration, 0, len(rows))
	for _, row := range rows {
		out = append(out, pricingConfigurationFromRecord(row))
	}
	return out, nil
}

func (r *PricingConfigurationRepositoryImpl) Save(ctx context.Context, cfg *models.PricingConfiguration) error {
	row := pricingConfigurationToRecord(cfg)
	row.ID = 0
	if err := r.create(ctx, row); err != nil {
		return err
	}
	cfg.ID = row.ID
	return nil
}

func (r *PricingConfigurationRepositoryImpl) Update(ctx context.Context, cfg *models.PricingConfiguration) error {
	return r.update(ctx, cfg.ID, pricingConfigurationToRecord(cfg))
}

func (r *PricingConfigurationRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.delete(ctx, id)
}

// SetDefault runs in one transaction so exactly one row ends up default
func (r *PricingConfigurationRepositoryImpl) SetDefault(ctx context.Context, id uint) error {
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&pricingConfigurationRecord{}).Where("id = ?", id).Update("is_default", true)
		if res.Error != nil {
			return fmt.Errorf("failed to set default configuration %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&pricingConfigurationRecord{}).Where("id <> ? AND is_default", id).Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default configurations: %w", err)
		}
		return nil
	})
}

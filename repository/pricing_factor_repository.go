package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/morevans-pricing/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// pricingFactorRecord is the pricing_factors row. The category attributes live in one jsonb
// column keyed by their wire names.
type pricingFactorRecord struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"size:255;not null"`
	Description string         `gorm:"type:text;not null;default:''"`
	Category    string         `gorm:"size:64;not null;index"`
	IsActive    bool           `gorm:"not null;default:true;index"`
	Attributes  datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (pricingFactorRecord) TableName() string { return "pricing_factors" }

func pricingFactorToRecord(f *models.PricingFactor) (*pricingFactorRecord, error) {
	attrs := []byte("{}")
	if f.Attributes != nil {
		raw, err := json.Marshal(f.Attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s attributes: %w", f.Category, err)
		}
		attrs = raw
	}
	return &pricingFactorRecord{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Category:    string(f.Category),
		IsActive:    f.IsActive,
		Attributes:  datatypes.JSON(attrs),
	}, nil
}

func pricingFactorFromRecord(r *pricingFactorRecord) (*models.PricingFactor, error) {
	f := &models.PricingFactor{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    models.PricingFactorCategory(r.Category),
		IsActive:    r.IsActive,
		Attributes:  models.NewPricingFactorAttributes(models.PricingFactorCategory(r.Category)),
	}
	if f.Attributes != nil && len(r.Attributes) > 0 {
		if err := json.Unmarshal(r.Attributes, f.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode %s attributes of factor %d: %w", r.Category, r.ID, err)
		}
	}
	return f, nil
}

// PricingFactorRepositoryImpl implements PricingFactorRepository on gorm
type PricingFactorRepositoryImpl struct {
	*BaseRepository[pricingFactorRecord]
}

// NewPricingFactorRepository creates a new repository for pricing factors
func NewPricingFactorRepository(db *gorm.DB) PricingFactorRepository {
	return &PricingFactorRepositoryImpl{
		BaseRepository: NewBaseRepository[pricingFactorRecord](db),
	}
}

func (r *PricingFactorRepositoryImpl) ByID(ctx context.Context, id uint) (*models.PricingFactor, error) {
	row, err := r.byID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return pricingFactorFromRecord(row)
}

func (r *PricingFactorRepositoryImpl) ByFilter(ctx context.Context, filter models.PricingFactorFilter) ([]*models.PricingFactor, error) {
	var rows []*pricingFactorRecord
	if err := r.applyFilter(r.getDB(ctx), filter).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pricing factors: %w", err)
	}

	out := make([]*models.PricingFactor, 0, len(rows))
	for _, row := range rows {
		f, err := pricingFactorFromRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *PricingFactorRepositoryImpl) Save(ctx context.Context, factor *models.PricingFactor) error {
	row, err := pricingFactorToRecord(factor)
	if err != nil {
		return err
	}
	row.ID = 0
	if err := r.create(ctx, row); err != nil {
		return err
	}
	factor.ID = row.ID
	return nil
}

func (r *PricingFactorRepositoryImpl) Update(ctx context.Context, factor *models.PricingFactor) error {
	row, err := pricingFactorToRecord(factor)
	if err != nil {
		return err
	}
	return r.update(ctx, factor.ID, row)
}

func (r *PricingFactorRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.delete(ctx, id)
}

// applyFilter applies filter conditions to the GORM query
func (r *PricingFactorRepositoryImpl) applyFilter(db *gorm.DB, filter models.PricingFactorFilter) *gorm.DB {
	if filter.Category != nil {
		db = db.Where("category = ?", string(*filter.Category))
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

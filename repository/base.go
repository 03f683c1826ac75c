package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// BaseRepository provides common repository functionality with transaction support
type BaseRepository[T any] struct {
	DB *gorm.DB
}

// NewBaseRepository creates a new base repository instance
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{
		DB: db,
	}
}

// WithTx returns a context carrying tx, picked up by every repository call made with it
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, TxContextKey, tx)
}

// getDB returns the appropriate database connection (with or without transaction)
func (r *BaseRepository[T]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

// byID loads one row; a missing row yields nil, nil
func (r *BaseRepository[T]) byID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.getDB(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entity by ID %d: %w", id, err)
	}
	return &entity, nil
}

func (r *BaseRepository[T]) create(ctx context.Context, entity *T) error {
	if err := r.getDB(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

// update writes every column of entity; a missing row yields ErrNotFound
func (r *BaseRepository[T]) update(ctx context.Context, id uint, entity *T) error {
	var zero T
	res := r.getDB(ctx).Model(&zero).Where("id = ?", id).Select("*").Omit("id", "created_at").Updates(entity)
	if res.Error != nil {
		return fmt.Errorf("failed to update entity %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BaseRepository[T]) delete(ctx context.Context, id uint) error {
	var zero T
	res := r.getDB(ctx).Delete(&zero, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete entity %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

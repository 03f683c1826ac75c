package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/amirphl/morevans-pricing/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenPostgres connects to the pricing database and applies the pool settings
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connected: %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	return db, nil
}

// AutoMigrate creates or updates the pricing tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&pricingFactorRecord{}, &pricingConfigurationRecord{}); err != nil {
		return fmt.Errorf("failed to migrate pricing tables: %w", err)
	}
	return nil
}

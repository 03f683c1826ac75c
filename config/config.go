// Package config provides configuration management and environment variable handling for the pricing console
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ConsoleConfig holds all configuration of the pricing console and its mock backend
type ConsoleConfig struct {
	API        PricingAPIConfig `json:"api"`
	Session    SessionConfig    `json:"session"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	MockServer MockServerConfig `json:"mock_server"`
	Database   DatabaseConfig   `json:"database"`
}

// PricingAPIConfig points the console at the pricing backend. A zero Timeout means requests
// are never cut short.
type PricingAPIConfig struct {
	BaseURL   string        `json:"base_url"`
	Token     string        `json:"-"`
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent"`
}

type SessionConfig struct {
	Role           string        `json:"role"`
	UserID         string        `json:"user_id"`
	SecretKey      string        `json:"-"`
	Issuer         string        `json:"issuer"`
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
}

type LoggingConfig struct {
	Output     string `json:"output"` // stderr, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled      bool   `json:"enabled"`
	TextfilePath string `json:"textfile_path"`
}

type MockServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Storage         string        `json:"storage"` // memory, postgres
	Seed            bool          `json:"seed"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"-"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DSN renders the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Address is the listen address of the mock backend
func (m MockServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var logOutputs = []string{"stderr", "file", "both"}

// LoadConsoleConfig reads the configuration from the environment, after loading an optional
// .env file. Variables already set in the environment win over the file.
func LoadConsoleConfig() (*ConsoleConfig, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ConsoleConfig{
		API: PricingAPIConfig{
			BaseURL:   strings.TrimRight(getEnvString("PRICING_API_BASE_URL", "http://localhost:8000"), "/"),
			Token:     getEnvString("PRICING_API_TOKEN", ""),
			Timeout:   getEnvDuration("PRICING_API_TIMEOUT", 0),
			UserAgent: getEnvString("PRICING_API_USER_AGENT", "morevans-pricing-console"),
		},
		Session: SessionConfig{
			Role:           getEnvString("SESSION_ROLE", ""),
			UserID:         getEnvString("SESSION_USER_ID", ""),
			SecretKey:      getEnvString("JWT_SECRET_KEY", ""),
			Issuer:         getEnvString("JWT_ISSUER", "morevans-pricing"),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 12*time.Hour),
		},
		Logging: LoggingConfig{
			Output:     getEnvString("LOG_OUTPUT", "stderr"),
			FilePath:   getEnvString("LOG_FILE_PATH", "logs/pricing-console.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled:      getEnvBool("METRICS_ENABLED", false),
			TextfilePath: getEnvString("METRICS_TEXTFILE_PATH", ""),
		},
		MockServer: MockServerConfig{
			Host:            getEnvString("MOCK_SERVER_HOST", "127.0.0.1"),
			Port:            getEnvInt("MOCK_SERVER_PORT", 8000),
			Storage:         getEnvString("MOCK_SERVER_STORAGE", StorageMemory),
			Seed:            getEnvBool("MOCK_SERVER_SEED", true),
			ShutdownTimeout: getEnvDuration("MOCK_SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "pricing"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
	}

	if err := ValidateConsoleConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads environment variables from path if it exists
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// ValidateConsoleConfig validates the configuration and reports every problem at once
func ValidateConsoleConfig(cfg *ConsoleConfig) error {
	var errs []string

	if cfg.API.BaseURL == "" {
		errs = append(errs, "PRICING_API_BASE_URL is required")
	} else if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "PRICING_API_BASE_URL must be an absolute URL")
	}
	if cfg.API.Timeout < 0 {
		errs = append(errs, "PRICING_API_TIMEOUT must not be negative")
	}

	if cfg.Session.SecretKey != "" && len(cfg.Session.SecretKey) < 32 {
		errs = append(errs, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if cfg.Session.AccessTokenTTL <= 0 {
		errs = append(errs, "JWT_ACCESS_TOKEN_TTL must be positive")
	}

	if !slices.Contains(logOutputs, cfg.Logging.Output) {
		errs = append(errs, fmt.Sprintf("LOG_OUTPUT must be one of: %v", logOutputs))
	}
	if cfg.Logging.Output != "stderr" && cfg.Logging.FilePath == "" {
		errs = append(errs, "LOG_FILE_PATH is required when logging to a file")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.TextfilePath == "" {
		errs = append(errs, "METRICS_TEXTFILE_PATH is required when metrics are enabled")
	}

	if cfg.MockServer.Port <= 0 || cfg.MockServer.Port > 65535 {
		errs = append(errs, "MOCK_SERVER_PORT must be between 1 and 65535")
	}
	switch cfg.MockServer.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Database.Host == "" {
			errs = append(errs, "DB_HOST is required for postgres storage")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			errs = append(errs, "DB_PORT must be between 1 and 65535")
		}
		if cfg.Database.Name == "" {
			errs = append(errs, "DB_NAME is required for postgres storage")
		}
		if cfg.Database.User == "" {
			errs = append(errs, "DB_USER is required for postgres storage")
		}
	default:
		errs = append(errs, "MOCK_SERVER_STORAGE must be one of: memory, postgres")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

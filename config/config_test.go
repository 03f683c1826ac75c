package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ConsoleConfig {
	return &ConsoleConfig{
		API:        PricingAPIConfig{BaseURL: "http://localhost:8000"},
		Session:    SessionConfig{AccessTokenTTL: time.Hour},
		Logging:    LoggingConfig{Output: "stderr"},
		MockServer: MockServerConfig{Port: 8000, Storage: StorageMemory},
	}
}

func TestLoadConsoleConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PRICING_API_BASE_URL", "https://pricing.example.com/")

	cfg, err := LoadConsoleConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://pricing.example.com", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, StorageMemory, cfg.MockServer.Storage)
	assert.True(t, cfg.MockServer.Seed)
	assert.Equal(t, "127.0.0.1:8000", cfg.MockServer.Address())
}

func TestLoadConsoleConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"SESSION_ROLE=admin\nPRICING_API_TIMEOUT=5s\nMOCK_SERVER_PORT=9100\n"), 0o600))
	t.Setenv("MOCK_SERVER_PORT", "9200")
	// godotenv sets variables for the rest of the process
	t.Cleanup(func() {
		os.Unsetenv("SESSION_ROLE")
		os.Unsetenv("PRICING_API_TIMEOUT")
	})

	cfg, err := LoadConsoleConfig()
	require.NoError(t, err)

	assert.Equal(t, "admin", cfg.Session.Role)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 9200, cfg.MockServer.Port, "environment wins over .env")
}

func TestValidateConsoleConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *ConsoleConfig)
		problem string
	}{
		{name: "valid", mutate: func(*ConsoleConfig) {}},
		{
			name:    "relative base url",
			mutate:  func(cfg *ConsoleConfig) { cfg.API.BaseURL = "pricing.local" },
			problem: "PRICING_API_BASE_URL must be an absolute URL",
		},
		{
			name:    "short secret",
			mutate:  func(cfg *ConsoleConfig) { cfg.Session.SecretKey = "short" },
			problem: "JWT_SECRET_KEY must be at least 32 characters long",
		},
		{
			name:    "unknown log output",
			mutate:  func(cfg *ConsoleConfig) { cfg.Logging.Output = "syslog" },
			problem: "LOG_OUTPUT must be one of",
		},
		{
			name:    "metrics without textfile",
			mutate:  func(cfg *ConsoleConfig) { cfg.Metrics.Enabled = true },
			problem: "METRICS_TEXTFILE_PATH is required",
		},
		{
			name:    "postgres without database",
			mutate:  func(cfg *ConsoleConfig) { cfg.MockServer.Storage = StoragePostgres },
			problem: "DB_HOST is required for postgres storage",
		},
		{
			name:    "unknown storage",
			mutate:  func(cfg *ConsoleConfig) { cfg.MockServer.Storage = "redis" },
			problem: "MOCK_SERVER_STORAGE must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConsoleConfig(cfg)
			if tt.problem == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

package utils

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirphl/morevans-pricing/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpired(t *testing.T) {
	past := UTCNow().Add(-time.Minute)
	future := UTCNow().Add(time.Minute)

	assert.True(t, IsExpired(past))
	assert.False(t, IsExpired(future))
	assert.False(t, IsExpiredPtr(nil))
	assert.True(t, IsExpiredPtr(&past))
}

func TestToPtr(t *testing.T) {
	p := ToPtr(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
}

func TestSetupLoggingWritesToFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "logs", "console.log")
	closeLog, err := SetupLogging(config.LoggingConfig{Output: "file", FilePath: path, MaxSize: 1})
	require.NoError(t, err)

	log.Printf("pricing console started")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pricing console started")
}

func TestSetupLoggingStderr(t *testing.T) {
	closeLog, err := SetupLogging(config.LoggingConfig{Output: "stderr"})
	require.NoError(t, err)
	assert.NoError(t, closeLog())
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestInit verifies logger initialization for different environments.
func TestInit(t *testing.T) {
	t.Run("Development", func(t *testing.T) {
		err := Init("development", "debug")
		require.NoError(t, err)
		assert.NotNil(t, globalLogger)
		assert.True(t, globalLogger.Core().Enabled(zap.DebugLevel))
	})

	t.Run("Production", func(t *testing.T) {
		err := Init("production", "info")
		require.NoError(t, err)
		assert.NotNil(t, globalLogger)
		assert.False(t, globalLogger.Core().Enabled(zap.DebugLevel))
		assert.True(t, globalLogger.Core().Enabled(zap.InfoLevel))
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		err := Init("production", "invalid_level")
		require.NoError(t, err)
		assert.True(t, globalLogger.Core().Enabled(zap.InfoLevel))
	})
}

// TestInit_Options verifies entries go to the configured sink with the service fields.
func TestInit_Options(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gel.log")

	err := Init("production", "info",
		WithOutput(path),
		WithFields(map[string]interface{}{"mode": "cli"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { globalLogger = nil })

	Named("lookup").Info("Scrape completed", zap.String("tracking_code", "HX1"))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"gel-tracker"`)
	assert.Contains(t, string(data), `"mode":"cli"`)
	assert.Contains(t, string(data), `"logger":"lookup"`)
	assert.Contains(t, string(data), `"tracking_code":"HX1"`)
}

// TestGet verifies that Get never returns nil.
func TestGet(t *testing.T) {
	globalLogger = nil
	assert.NotNil(t, Get())

	require.NoError(t, Init("development", "info"))
	assert.Same(t, globalLogger, Get())
}

// TestNamed verifies component loggers derive from the global logger.
func TestNamed(t *testing.T) {
	globalLogger = nil
	assert.NotNil(t, Named("scraper"))

	require.NoError(t, Init("development", "info"))
	assert.Equal(t, "scraper", Named("scraper").Name())
}

// TestSync verifies that Sync does not panic even if logger is nil.
func TestSync(t *testing.T) {
	globalLogger = nil
	Sync()

	Init("development", "info")
	Sync()
}

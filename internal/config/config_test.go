package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, "yai_analytics.db", cfg.DatabaseURL)
	assert.Equal(t, 256, cfg.TelemetryBuffer)
	assert.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
	assert.False(t, cfg.AssistantEnabled())
	assert.False(t, cfg.Development())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://yai.app")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.AssistantEnabled())
	assert.True(t, cfg.Development())
	assert.Equal(t, "8088", cfg.HTTPPort)
	assert.Equal(t, []string{"http://localhost:5173", "https://yai.app"}, cfg.CORSAllowedOrigins)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	t.Run("bad buffer", func(t *testing.T) {
		t.Setenv("TELEMETRY_BUFFER", "0")
		_, err := Parse()
		assert.ErrorContains(t, err, "TELEMETRY_BUFFER")
	})
	t.Run("unparseable buffer", func(t *testing.T) {
		t.Setenv("TELEMETRY_BUFFER", "lots")
		_, err := Parse()
		assert.Error(t, err)
	})
	t.Run("bad level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "chatty")
		_, err := Parse()
		assert.ErrorContains(t, err, "LOG_LEVEL")
	})
}

func TestLoadReportsDotEnv(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.DotEnvLoaded)
	})
	t.Run("file present", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("METRICS_NAMESPACE=from_dotenv\n"), 0o600))
		t.Chdir(dir)
		t.Cleanup(func() { os.Unsetenv("METRICS_NAMESPACE") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.DotEnvLoaded)
		assert.Equal(t, "from_dotenv", cfg.MetricsNamespace)
	})
}

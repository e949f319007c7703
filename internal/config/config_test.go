package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	for _, key := range []string{"API_KEY", "BASE_URL", "ENVIRONMENT", "TIMEOUT", "MAX_RETRIES", "OUTPUT", "LOGGING_LEVEL", "LOGGING_FORMAT"} {
		t.Setenv("SCRAPYBARA_"+key, "")
	}

	path := filepath.Join(t.TempDir(), "scrapybara.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
api_key: file-key
environment: staging
timeout: 45s
max_retries: 3
output: yaml
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "file-key", cfg.APIKey)
	require.Equal(t, "staging", cfg.Environment)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, "yaml", cfg.Output)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
api_key: file-key
logging:
  level: info
`)

	t.Setenv("SCRAPYBARA_API_KEY", "env-key")
	t.Setenv("SCRAPYBARA_BASE_URL", "http://localhost:8080")
	t.Setenv("SCRAPYBARA_LOGGING_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, "error", cfg.Logging.Level)
}

func TestDefaultsWithoutFile(t *testing.T) {
	writeConfig(t, "")
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Zero(t, cfg.Timeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"environment": "environment: moon\n",
		"output":      "output: xml\n",
		"retries":     "max_retries: -1\n",
	}

	for name, body := range tests {
		_, err := Load(writeConfig(t, body))
		require.Error(t, err, name)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

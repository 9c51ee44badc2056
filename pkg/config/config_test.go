package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test123")
	t.Setenv("SHORTLIST_LISTEN_ADDR", ":9000")
	t.Setenv("SHORTLIST_ENVIRONMENT", "staging")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gsk_test123", settings.GroqAPIKey)
	assert.Equal(t, ":9000", settings.ListenAddr)
	assert.Equal(t, "staging", settings.Environment)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test123")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", settings.Environment)
	assert.Equal(t, ":8000", settings.ListenAddr)
	assert.Equal(t, 60, settings.RateLimitPerMinute)
	assert.Equal(t, int64(10), settings.MaxRequestSizeMB)
	assert.Equal(t, "shortlist.db", settings.DatabasePath)
	assert.False(t, settings.IsProduction())
}

func TestLoadPrefixedKeyWins(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_plain")
	t.Setenv("SHORTLIST_GROQ_API_KEY", "gsk_prefixed")

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gsk_prefixed", settings.GroqAPIKey)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test123")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "listen_addr: \":7777\"\nrate_limit_per_minute: 5\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	settings, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, ":7777", settings.ListenAddr)
	assert.Equal(t, 5, settings.RateLimitPerMinute)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test123")

	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsMissingKey(t *testing.T) {
	os.Unsetenv("GROQ_API_KEY")
	os.Unsetenv("SHORTLIST_GROQ_API_KEY")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq_api_key")
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test123")
	t.Setenv("SHORTLIST_ENVIRONMENT", "chaos")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestValidateRejectsBadTemperature(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test123")
	t.Setenv("SHORTLIST_LLM_TEMPERATURE", "3.5")

	_, err := Load("")
	assert.Error(t, err)
}

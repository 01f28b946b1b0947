package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("NREL_API_KEY", "")
	t.Setenv("AUTH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "solar.apiKey")

	t.Setenv("NREL_API_KEY", "demo-key")
	_, err = Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.secret")

	t.Setenv("AUTH_SECRET", "test-secret")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "demo-key", cfg.Solar.APIKey)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "https://developer.nrel.gov/api/pvwatts/v8.json", cfg.Solar.BaseURL)
	require.Equal(t, 24*time.Hour, cfg.Session.TTL)
	require.True(t, cfg.Exports.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("NREL_API_KEY", "demo-key")
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("HTTP_ADDRESS", ":9000")
	t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("EXPORTS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.HTTP.CORS.AllowedOrigins)
	require.Equal(t, 2*time.Hour, cfg.Session.TTL)
	require.False(t, cfg.Exports.Enabled)
}

func TestValidate_GoogleRequiresCompanionFields(t *testing.T) {
	cfg := defaultConfig()
	cfg.Solar.APIKey = "demo-key"
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.Google.ClientID = "client-id"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.google.clientSecret")

	cfg.Auth.Google.ClientSecret = "client-secret"
	cfg.Auth.Google.RedirectURL = "https://app.example.com/auth/google/callback"
	cfg.Auth.Google.TokenEncryptionKey = "0123456789abcdef"
	require.NoError(t, cfg.Validate())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.GetTimeout())
	assert.Equal(t, 10, cfg.API.PageSize)

	assert.Equal(t, 3, cfg.Client.RetryMaxAttempts)
	assert.Equal(t, time.Second, cfg.Client.GetRetryBaseDelay())
	assert.Equal(t, 400*time.Millisecond, cfg.Client.GetSearchDebounce())
	assert.False(t, cfg.Client.SingleFlightRefresh)

	assert.Equal(t, "9090", cfg.Metrics.Port)
	assert.Equal(t, 30*time.Second, cfg.Sync.GetInterval())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://backend.example.com")
	t.Setenv("CLIENT_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("CLIENT_SINGLE_FLIGHT_REFRESH", "true")
	t.Setenv("SYNC_INTERVAL_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://backend.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Client.RetryMaxAttempts)
	assert.True(t, cfg.Client.SingleFlightRefresh)
	assert.Equal(t, time.Minute, cfg.Sync.GetInterval())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("CLIENT_RETRY_MAX_ATTEMPTS", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

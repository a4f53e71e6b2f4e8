package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("RELAY_ENDPOINTS", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("LATITUDE", "")
	t.Setenv("LONGITUDE", "")
	t.Setenv("RELAY_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, RelayStrict, cfg.RelayMode)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 6*time.Hour, cfg.RelayCacheTTL)
	assert.Contains(t, cfg.UpstreamURL, "homatherapie.de")
	assert.Nil(t, cfg.RelayEndpoints)
	assert.Nil(t, cfg.Latitude)
	assert.True(t, cfg.Development())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RELAY_ENDPOINTS", " https://a.example/ , ,http://localhost:8080/api/agnihotra")
	t.Setenv("RELAY_MODE", RelayTransparent)
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	t.Setenv("LATITUDE", "28.6139")
	t.Setenv("LONGITUDE", "77.2090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Development())
	assert.Equal(t, []string{"https://a.example/", "http://localhost:8080/api/agnihotra"}, cfg.RelayEndpoints)
	assert.Equal(t, RelayTransparent, cfg.RelayMode)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone.String())
	require.NotNil(t, cfg.Latitude)
	assert.Equal(t, 28.6139, *cfg.Latitude)
	assert.Equal(t, 77.209, *cfg.Longitude)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"relay mode":     {"RELAY_MODE", "sometimes"},
		"timeout":        {"HTTP_TIMEOUT", "soon"},
		"negative ttl":   {"RELAY_CACHE_TTL", "-1h"},
		"timezone":       {"TIMEZONE", "Mars/Olympus"},
		"latitude range": {"LATITUDE", "91"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if kv[0] == "LATITUDE" {
				t.Setenv("LONGITUDE", "0")
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresBothCoordinates(t *testing.T) {
	t.Setenv("LATITUDE", "28.6")
	t.Setenv("LONGITUDE", "")
	_, err := Load()
	assert.Error(t, err)
}

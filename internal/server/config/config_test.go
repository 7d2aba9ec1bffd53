package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"inkpost-server"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.NotEqual(t, cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		"the two token classes must use distinct secrets")
	assert.False(t, cfg.CookieSecure)
}

func TestParseJson_OverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	body := `{
		"endpoint_addr": ":9090",
		"access_token_validity_duration": "5m",
		"cookie_secure": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.True(t, cfg.CookieSecure)
	// untouched fields keep their defaults
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, "accessSecret", cfg.AccessTokenSecret)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	withArgs(t)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddr)
}

func TestParseEnv_Overrides(t *testing.T) {
	withArgs(t)
	t.Setenv("INKPOST_ADDR", ":7070")
	t.Setenv("INKPOST_ACCESS_TOKEN_TTL", "30m")
	t.Setenv("INKPOST_COOKIE_SECURE", "true")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "accessSecret", cfg.AccessTokenSecret)
}

func TestParseFlags_Overrides(t *testing.T) {
	withArgs(t, "-a", ":6060", "-as", "flag-access", "-at", "2", "-o", "https://a.example,https://b.example")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":6060", cfg.EndpointAddr)
	assert.Equal(t, "flag-access", cfg.AccessTokenSecret)
	assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

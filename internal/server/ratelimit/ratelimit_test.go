package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoints ...EndpointConfig) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: endpoints,
	}
}

func TestLimiter_AllowsWithinBurst(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{
		Path: "/optimizations", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2,
	}))
	defer l.Stop()

	allowed, info := l.Allow("1.2.3.4", "/optimizations", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 10, info.Limit)

	allowed, _ = l.Allow("1.2.3.4", "/optimizations", "POST")
	assert.True(t, allowed)

	// Burst of 2 exhausted; refill rate is far too slow to matter here.
	allowed, info = l.Allow("1.2.3.4", "/optimizations", "POST")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{
		Path: "/leads/rank", Method: "POST", Limit: 1, Window: time.Hour,
	}))
	defer l.Stop()

	allowed, _ := l.Allow("1.1.1.1", "/leads/rank", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("1.1.1.1", "/leads/rank", "POST")
	require.False(t, allowed)

	allowed, _ = l.Allow("2.2.2.2", "/leads/rank", "POST")
	assert.True(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/optimizations", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig(EndpointConfig{
		Path: "/leads/qualify", Method: "POST", Limit: 1, Window: time.Hour,
	})
	cfg.Whitelist["9.9.9.9"] = true
	cfg.Blacklist["6.6.6.6"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("9.9.9.9", "/leads/qualify", "POST")
		require.True(t, allowed)
	}

	allowed, _ := l.Allow("6.6.6.6", "/leads/qualify", "POST")
	assert.False(t, allowed)
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2000; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestConfigMatch_PrefixAndExact(t *testing.T) {
	cfg := testConfig(
		EndpointConfig{Path: "/optimizations", Method: "POST", Limit: 10, Window: time.Hour},
		EndpointConfig{Path: "/leads/", Method: "POST", Limit: 60, Window: time.Minute},
	)

	exact := cfg.match("/optimizations", "POST")
	require.NotNil(t, exact)
	assert.Equal(t, 10, exact.Limit)

	prefix := cfg.match("/leads/rank", "POST")
	require.NotNil(t, prefix)
	assert.Equal(t, 60, prefix.Limit)

	assert.Nil(t, cfg.match("/optimizations", "GET"))
	assert.Nil(t, cfg.match("/prompts/abc", "GET"))
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "1.1.1.1, 2.2.2.2")

	cfg := LoadConfig()
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["1.1.1.1"])
	assert.True(t, cfg.Whitelist["2.2.2.2"])
}

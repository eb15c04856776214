package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseMethods(t *testing.T) {
	assert.Equal(t, map[string]bool{"GET": true}, parseMethods("GET"))
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, parseMethods("get, head"))
	assert.Equal(t, map[string]bool{}, parseMethods(" , "))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "hello")
	t.Setenv("TEST_BOOL", "off")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_DUR", "90s")
	t.Setenv("TEST_BAD_DUR", "soon")

	assert.Equal(t, "hello", envStr("TEST_STR", "d"))
	assert.Equal(t, "d", envStr("TEST_UNSET", "d"))
	assert.False(t, envBool("TEST_BOOL", true))
	assert.True(t, envBool("TEST_UNSET", true))
	assert.Equal(t, 42, envInt("TEST_INT", 0))
	assert.Equal(t, 90*time.Second, envDur("TEST_DUR", time.Second))
	assert.Equal(t, time.Second, envDur("TEST_BAD_DUR", time.Second))
}

func TestLoadRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "-5")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	// TTL is raised to cover several refill intervals.
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

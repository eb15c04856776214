package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangnecon/cafe-pos/internal/config"
)

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Add("X-Custom", "a")
	hdr.Add("X-Custom", "b")
	body := []byte(`{"status":"ok"}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, body, gotBody)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, gotHdr["X-Custom"])
}

func TestDecodePayloadRejectsTruncatedInput(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok)
	}
}

func testContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/menu-items")
	return c
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	withQuery := cacheKeyFrom(cfg, testContext("/api/menu-items?category=tea"))
	otherQuery := cacheKeyFrom(cfg, testContext("/api/menu-items?category=coffee"))
	sameAgain := cacheKeyFrom(cfg, testContext("/api/menu-items?category=tea"))

	assert.Equal(t, withQuery, sameAgain)
	assert.NotEqual(t, withQuery, otherQuery)
	assert.Contains(t, withQuery, "cache:")

	// Under the plain route strategy the query must not matter.
	cfg.KeyStrategy = "route"
	assert.Equal(t,
		cacheKeyFrom(cfg, testContext("/api/menu-items?category=tea")),
		cacheKeyFrom(cfg, testContext("/api/menu-items?category=coffee")),
	)
}

// With caching disabled the middleware must be a transparent pass-through.
func TestNewRedisCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

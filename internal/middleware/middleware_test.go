package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-allocator/internal/config"
	"github.com/iliyamo/exam-seat-allocator/internal/utils"
)

const testSecret = "test-secret"

func bearer(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, id, role, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func do(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAndRole(t *testing.T) {
	e := echo.New()
	g := e.Group("/v1", JWTAuth(testSecret))
	g.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "ok": ok, "role": Role(c)})
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireRole("ADMIN"))

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/v1/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/v1/me", "Bearer nonsense").Code)

	rec := do(e, http.MethodGet, "/v1/me", bearer(t, 7, "OPERATOR"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"ok":true,"role":"OPERATOR"}`, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/v1/admin", bearer(t, 7, "OPERATOR")).Code)
	assert.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/v1/admin", bearer(t, 1, "ADMIN")).Code)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisCacheHitAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "t:cache", MaxBodyBytes: 1 << 20}

	calls := 0
	e := echo.New()
	e.GET("/v1/halls/:id/seat-map", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"hall": c.Param("id"), "calls": calls})
	}, NewRedisCache(cfg, rdb))
	e.POST("/v1/allocations", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, InvalidateCache(cfg, rdb, zerolog.Nop()))

	first := do(e, http.MethodGet, "/v1/halls/1/seat-map?exam_id=4", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/v1/halls/1/seat-map?exam_id=4", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	other := do(e, http.MethodGet, "/v1/halls/2/seat-map?exam_id=4", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"), "path params are part of the key")

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/allocations", "").Code)
	again := do(e, http.MethodGet, "/v1/halls/1/seat-map?exam_id=4", "")
	assert.Equal(t, "MISS", again.Header().Get("X-Cache"))
}

func TestRedisCacheDisabledWithoutClient(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, NewRedisCache(cfg, nil))
	rec := do(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTripRejectsShort(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 1})
	assert.False(t, ok)

	bs, err := encodePayload(200, http.Header{"Content-Type": {"application/json"}}, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, hdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, 200, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))
}

func TestTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "t:rl",
	}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb, zerolog.Nop()))

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/x", "").Code)
	second := do(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	blocked := do(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	log := zerolog.New(&buf)
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })

	rec := do(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"route":"/boom"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestAutoAllocateCostsMore(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 6, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "t:rl",
	}
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/v1/exams/:id/auto-allocate", ok, NewTokenBucket(cfg, rdb, zerolog.Nop()))
	e.GET("/v1/students", ok, NewTokenBucket(cfg, rdb, zerolog.Nop()))

	first := do(e, http.MethodPost, "/v1/exams/1/auto-allocate", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodPost, "/v1/exams/1/auto-allocate", "").Code)
	// a cheap read still fits in the remaining token
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/students", "").Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/dashboard")
	c.Set(ctxUserID, uint64(4))

	cfg := config.RateLimitConfig{Prefix: "esa:rl", KeyStrategy: "ip_user"}
	assert.Equal(t, "esa:rl:ip:10.0.0.7:user:4", buildRateKey(cfg, c))

	cfg.KeyStrategy = "route"
	assert.Equal(t, "esa:rl:route:GET /v1/dashboard", buildRateKey(cfg, c))

	cfg.KeyStrategy = "bogus"
	assert.Equal(t, "esa:rl:ip:10.0.0.7:user:4:route:GET /v1/dashboard", buildRateKey(cfg, c))
}

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/exam-seat-allocator/internal/config"
)

// takeScript refills the bucket stored at KEYS[1] and tries to take
// ARGV[6] tokens from it.
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s, cost.
// Returns {allowed, tokens_left, retry_after_ms}.
var takeScript = redis.NewScript(`
local now, cap, refill, interval, ttl, cost =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]),
    tonumber(ARGV[4]), tonumber(ARGV[5]), tonumber(ARGV[6])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last = tonumber(redis.call('HGET', KEYS[1], 'last_ms'))
if tokens == nil or last == nil then
    tokens, last = cap, now
end

local steps = math.floor(math.max(0, now - last) / interval)
if steps > 0 then
    tokens = math.min(cap, tokens + steps * refill)
    last = last + steps * interval
end

local allowed, wait = 0, 0
if tokens >= cost then
    allowed, tokens = 1, tokens - cost
else
    local missing = math.ceil((cost - tokens) / refill)
    wait = missing * interval - (now - last)
    if wait < 0 then wait = 0 end
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_ms', last)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// requestCost weighs the calls that hold database resources for long.
// An auto-allocate run may insert thousands of rows and an ad-hoc SELECT
// scans arbitrary tables; everything else costs one token.
func requestCost(c echo.Context) int {
	if c.Request().Method != http.MethodPost {
		return 1
	}
	switch p := c.Path(); {
	case strings.HasSuffix(p, "/auto-allocate"):
		return 5
	case strings.HasSuffix(p, "/queries/select"):
		return 3
	}
	return 1
}

type bucketVerdict struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

func parseVerdict(v any) (bucketVerdict, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 3 {
		return bucketVerdict{}, false
	}
	nums := make([]int64, 3)
	for i, x := range arr {
		n, ok := x.(int64)
		if !ok {
			return bucketVerdict{}, false
		}
		nums[i] = n
	}
	return bucketVerdict{allowed: nums[0] == 1, remaining: nums[1], retry: time.Duration(nums[2]) * time.Millisecond}, true
}

// NewTokenBucket limits requests with a Redis token bucket keyed by the
// configured strategy (ip, operator, route or combinations).  Redis errors
// let the request through; a nil client disables limiting.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := int64(cfg.TTL / time.Second)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			cost := min(requestCost(c), cfg.Capacity)

			res, err := takeScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(), ttl, cost).Result()
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}
			verdict, ok := parseVerdict(res)
			if !ok {
				log.Warn().Str("key", key).Interface("result", res).Msg("rate limiter returned unexpected result")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(verdict.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if verdict.allowed {
				return next(c)
			}

			secs := int((verdict.retry + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.Itoa(secs))
			log.Debug().Str("key", key).Int("cost", cost).Dur("retry", verdict.retry).Msg("rate limited")
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// buildRateKey joins the prefix with the identity parts the strategy names,
// e.g. "ip_user" keys by client address and operator id.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	parts := map[string]string{
		"ip":    ip,
		"user":  userKey(c),
		"route": c.Request().Method + " " + c.Path(),
	}
	strategy := strings.ToLower(cfg.KeyStrategy)
	if strategy == "" {
		strategy = "ip_user_route"
	}
	key := []string{cfg.Prefix}
	for _, name := range strings.Split(strategy, "_") {
		if v, ok := parts[name]; ok {
			key = append(key, name, v)
		}
	}
	if len(key) == 1 {
		key = append(key, "ip", ip, "user", parts["user"], "route", parts["route"])
	}
	return strings.Join(key, ":")
}

package middleware

import (
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/seat-commit-coordinator/internal/config"
)

// tokenBucketScript refills and drains one bucket atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local now, cap, refill, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local tokens, ts = tonumber(state[1]), tonumber(state[2])
if tokens == nil or ts == nil then
  tokens, ts = cap, now
end
local steps = math.floor(math.max(0, now - ts) / every)
if steps > 0 then
  tokens = math.min(cap, tokens + steps * refill)
  ts = ts + steps * every
end
local allowed, wait = 0, 0
if tokens > 0 then
  allowed, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - ts))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// bucketState is the decoded reply of tokenBucketScript.
type bucketState struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// NewTokenBucket limits the hold and confirm routes with a token bucket kept
// in Redis, the same instance that stores seat holds.  The limiter fails
// open: when Redis errors the request proceeds and the hold path surfaces
// the outage on its own.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if log == nil {
        log = zap.NewNop()
    }
    log = log.With(zap.String("component", "ratelimit"))

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            raw, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL/time.Second),
            ).Int64Slice()
            if err != nil || len(raw) != 3 {
                log.Warn("limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
                return next(c)
            }
            st := bucketState{allowed: raw[0] == 1, remaining: raw[1], retry: time.Duration(raw[2]) * time.Millisecond}

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if st.allowed {
                return next(c)
            }

            secs := int(math.Ceil(st.retry.Seconds()))
            h.Set("Retry-After", strconv.Itoa(secs))
            log.Debug("request throttled", zap.String("key", key), zap.Duration("retry", st.retry))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "message":    "Too many requests, slow down.",
                "retryAfter": secs,
            })
        }
    }
}

// buildRateKey scopes a bucket by claimant, route or client address, in
// the combination named by cfg.KeyStrategy.  Without an authenticated
// claimant the client address stands in for it, so anonymous callers never
// share one bucket.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    who := []string{"ip", ip}
    if id := ClaimantID(c); id != "" {
        who = []string{"claimant", id}
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "claimant":
        parts = append(parts, who...)
    case "ip":
        parts = append(parts, "ip", ip)
    case "ip_claimant":
        parts = append(parts, "ip", ip)
        if who[0] == "claimant" {
            parts = append(parts, who...)
        }
    default: // claimant_route
        parts = append(parts, who...)
        parts = append(parts, "route", route)
    }
    return strings.Join(parts, ":")
}

package middleware

import (
    "context"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"

    "github.com/iliyamo/club-ledger/internal/config"
    "github.com/iliyamo/club-ledger/internal/monitoring"
)

// tokenBucketScript refills the bucket at KEYS[1] for the whole intervals
// elapsed since its last refill, then tries to take one token.
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_seconds.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local now, cap, step, every, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local st = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms')
local tokens, last = tonumber(st[1]), tonumber(st[2])
if not tokens or not last then
    tokens, last = cap, now
end
if every > 0 and step > 0 and now > last then
    local n = math.floor((now - last) / every)
    if n > 0 then
        tokens = math.min(cap, tokens + n * step)
        last = last + n * every
    end
end
local ok, wait = 0, 0
if tokens > 0 then
    ok, tokens = 1, tokens - 1
else
    wait = math.max(0, every - (now - last))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// verdict is one decoded script reply.
type verdict struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// retrySeconds rounds the wait up for the Retry-After header.
func (v verdict) retrySeconds() int {
    return int(math.Ceil(v.retry.Seconds()))
}

type bucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
    now func() time.Time
}

func (b bucket) take(ctx context.Context, key string) (verdict, error) {
    res, err := tokenBucketScript.Run(ctx, b.rdb, []string{key},
        b.now().UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return verdict{}, err
    }
    if len(res) != 3 {
        return verdict{}, errShortReply(len(res))
    }
    return verdict{
        allowed:   res[0] == 1,
        remaining: res[1],
        retry:     time.Duration(res[2]) * time.Millisecond,
    }, nil
}

type errShortReply int

func (e errShortReply) Error() string {
    return "token bucket script returned " + strconv.Itoa(int(e)) + " values, want 3"
}

// NewTokenBucket limits requests per key with a Redis token bucket.  It is
// a no-op when disabled or when rdb is nil, and lets requests through when
// Redis cannot answer.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
    return newTokenBucket(cfg, rdb, log, time.Now)
}

func newTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger, now func() time.Time) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    b := bucket{cfg: cfg, rdb: rdb, now: now}
    limit := strconv.Itoa(cfg.Capacity)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            v, err := b.take(c.Request().Context(), key)
            if err != nil {
                log.Warn().Err(err).Str("key", key).Msg("ratelimit: allowing request")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", limit)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if v.allowed {
                return next(c)
            }

            secs := v.retrySeconds()
            h.Set("Retry-After", strconv.Itoa(secs))
            monitoring.RateLimited(c.Path())
            log.Debug().Str("key", key).Dur("retry", v.retry).Msg("ratelimit: blocked")
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "success":     false,
                "message":     "rate limit exceeded",
                "retry_after": secs,
            })
        }
    }
}

// buildRateKey joins the configured prefix with the identity parts chosen
// by cfg.KeyStrategy (ip, route, user, or ip_route by default).
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    var parts []string
    switch cfg.KeyStrategy {
    case "ip":
        parts = []string{"ip", ip}
    case "route":
        parts = []string{"route", route}
    case "user":
        parts = []string{"user", currentUserID(c)}
    default:
        parts = []string{"ip", ip, "route", route}
    }
    return cfg.Prefix + ":" + strings.Join(parts, ":")
}

func currentUserID(c echo.Context) string {
    uid, ok := c.Get(CtxUserID).(uint64)
    if !ok {
        return "anon"
    }
    return strconv.FormatUint(uid, 10)
}

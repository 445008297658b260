package config

import (
    "strings"
    "time"
)

// RateLimitConfig tunes the Redis token bucket guarding public writes.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int           // bucket size
    RefillTokens   int           // tokens added per interval
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after this
    KeyStrategy    string        // ip | route | user | ip_route
    Prefix         string
    Debug          bool // adds X-RateLimit-Key
}

// LoadRateLimitConfig reads RATE_LIMIT_*.  RATE_LIMIT_BURST overrides the
// capacity and RATE_LIMIT_REFILL_EVERY is shorthand for one token per
// period.  The TTL is never shorter than five refill intervals.
func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 20),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    strings.ToLower(envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route")),
        Prefix:         strings.TrimSuffix(envStr("RATE_LIMIT_PREFIX", "club:rl"), ":"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
        rl.Capacity = burst
    }
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        rl.RefillTokens, rl.RefillInterval = 1, every
    }

    rl.Capacity = max(rl.Capacity, 1)
    rl.RefillTokens = max(rl.RefillTokens, 1)
    if rl.RefillInterval <= 0 {
        rl.RefillInterval = time.Second
    }
    rl.TTL = max(rl.TTL, 5*rl.RefillInterval)
    return rl
}

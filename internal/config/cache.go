package config

import (
    "strings"
    "time"
)

// CacheConfig controls the Redis response cache in front of the public
// catalog listings.  Caching is off when Enabled is false or no Redis
// client is available.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int // larger responses are served but not stored
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       strings.TrimSuffix(envStr("CACHE_PREFIX", "club:cache"), ":"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return cfg
}

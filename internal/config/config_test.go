package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
    t.Setenv("APP_ENV", "dev")
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
    t.Setenv("DB_DRIVER", "sqlite")
    t.Setenv("SQLITE_PATH", "/tmp/club.db")
    t.Setenv("BOOKING_SETTLEMENT", "")
    t.Setenv("ADMIN_EMAIL", "")
    t.Setenv("ADMIN_PASSWORD", "")
    t.Setenv("CORS_ORIGINS", "")
}

func TestLoadSQLiteDefaults(t *testing.T) {
    setBaseEnv(t)

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, "sqlite", cfg.DBDriver)
    assert.Equal(t, SettlementImmediate, cfg.Settlement)
    assert.Equal(t, 15, cfg.AccessTTLMin)
    assert.Contains(t, cfg.DSN(), "file:/tmp/club.db?")
    assert.False(t, cfg.IsProd())
}

func TestLoadReportsEveryMissingVar(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("DB_DRIVER", "mysql")
    t.Setenv("DB_USER", "")
    t.Setenv("DB_HOST", "")
    t.Setenv("DB_PORT", "")
    t.Setenv("DB_NAME", "")
    t.Setenv("JWT_SECRET", "")

    _, err := Load()
    require.Error(t, err)
    for _, key := range []string{"JWT_SECRET", "DB_USER", "DB_HOST", "DB_PORT", "DB_NAME"} {
        assert.Contains(t, err.Error(), key)
    }
}

func TestLoadMySQL(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("DB_DRIVER", "MySQL")
    t.Setenv("DB_USER", "club")
    t.Setenv("DB_PASS", "pw")
    t.Setenv("DB_HOST", "db")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "ledger")
    t.Setenv("APP_ENV", "prod")
    t.Setenv("CORS_ORIGINS", "https://club.example, https://admin.example ,")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, "club:pw@tcp(db:3306)/ledger?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true", cfg.DSN())
    assert.True(t, cfg.IsProd())
    assert.Equal(t, []string{"https://club.example", "https://admin.example"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("BOOKING_SETTLEMENT", "later")
    _, err := Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "BOOKING_SETTLEMENT")

    cfg := Config{DBDriver: "postgres", Settlement: SettlementDeferred, AccessTTLMin: 5, AdminEmail: "a@b.c"}
    err = cfg.Validate()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "DB_DRIVER")
    assert.Contains(t, err.Error(), "ADMIN_PASSWORD")

    setBaseEnv(t)
    t.Setenv("ACCESS_TOKEN_TTL_MIN", "soon")
    _, err = Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL_MIN")
}

func TestLoadRateLimitConfig(t *testing.T) {
    t.Setenv("RATE_LIMIT_ENABLED", "off")
    t.Setenv("RATE_LIMIT_BURST", "5")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    t.Setenv("RATE_LIMIT_KEY_STRATEGY", "IP")

    rl := LoadRateLimitConfig()
    assert.False(t, rl.Enabled)
    assert.Equal(t, 5, rl.Capacity)
    assert.Equal(t, 1, rl.RefillTokens)
    assert.Equal(t, 2*time.Second, rl.RefillInterval)
    assert.Equal(t, 10*time.Second, rl.TTL)
    assert.Equal(t, "ip", rl.KeyStrategy)
}

func TestRedisOptions(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    t.Setenv("REDIS_HOST", "")
    t.Setenv("REDIS_PORT", "")
    t.Setenv("REDIS_DB", "2")
    t.Setenv("REDIS_TLS", "1")
    t.Setenv("REDIS_DIAL_TIMEOUT", "")

    opts := RedisOptions()
    assert.Equal(t, "cache:6380", opts.Addr)
    assert.Equal(t, 2, opts.DB)
    assert.NotNil(t, opts.TLSConfig)
    assert.Equal(t, 2*time.Second, opts.DialTimeout)

    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6379")
    t.Setenv("REDIS_TLS", "off")
    opts = RedisOptions()
    assert.Equal(t, "redis:6379", opts.Addr)
    assert.Nil(t, opts.TLSConfig)
}

func TestLoadCacheConfig(t *testing.T) {
    t.Setenv("CACHE_ENABLED", "")
    t.Setenv("CACHE_TTL", "")
    t.Setenv("CACHE_PREFIX", "")
    t.Setenv("CACHE_MAX_BODY_BYTES", "")
    cfg := LoadCacheConfig()
    assert.True(t, cfg.Enabled)
    assert.Equal(t, 30*time.Second, cfg.TTL)
    assert.Equal(t, "club:cache", cfg.Prefix)
    assert.Equal(t, 1<<20, cfg.MaxBodyBytes)

    t.Setenv("CACHE_ENABLED", "off")
    t.Setenv("CACHE_TTL", "-1s")
    t.Setenv("CACHE_PREFIX", "x:")
    cfg = LoadCacheConfig()
    assert.False(t, cfg.Enabled)
    assert.Equal(t, 30*time.Second, cfg.TTL)
    assert.Equal(t, "x", cfg.Prefix)
}

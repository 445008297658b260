package config

import (
    "context"
    "crypto/tls"
    "net"
    "time"

    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"
)

// RedisOptions builds client options from REDIS_ADDR, or REDIS_HOST plus
// REDIS_PORT when both are set, and REDIS_PASSWORD, REDIS_DB,
// REDIS_POOL_SIZE, REDIS_DIAL_TIMEOUT and REDIS_TLS.
func RedisOptions() *redis.Options {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = net.JoinHostPort(host, port)
    }
    opts := &redis.Options{
        Addr:        addr,
        Password:    envStr("REDIS_PASSWORD", ""),
        DB:          envInt("REDIS_DB", 0),
        PoolSize:    envInt("REDIS_POOL_SIZE", 0), // 0 keeps the go-redis default
        DialTimeout: envDur("REDIS_DIAL_TIMEOUT", 2*time.Second),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts
}

// NewRedisClient connects with RedisOptions and pings the server.  It
// returns nil when Redis does not answer; the rate limiter and the
// response cache then step aside.
func NewRedisClient(log zerolog.Logger) *redis.Client {
    opts := RedisOptions()
    client := redis.NewClient(opts)

    ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable; rate limiting and caching disabled")
        _ = client.Close()
        return nil
    }
    log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis connected")
    return client
}

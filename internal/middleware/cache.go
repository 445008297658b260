package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"

    "github.com/iliyamo/club-ledger/internal/config"
)

// captureWriter tees the response body while forwarding it to the client.
type captureWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.overflow {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.overflow = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is what gets stored in Redis.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// routeKeyPrefix is shared by every cached variant of one route.
func routeKeyPrefix(cfg config.CacheConfig, route string) string {
    return cfg.Prefix + ":" + route + ":"
}

func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Request().URL.RawQuery))
    return fmt.Sprintf("%s%x", routeKeyPrefix(cfg, c.Path()), sum[:])
}

// NewResponseCache caches successful GET responses for cfg.TTL.  Redis
// errors are logged and the request is served uncached.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            raw, err := rdb.Get(ctx, key).Bytes()
            switch {
            case err == nil:
                var hit cachedResponse
                if jerr := json.Unmarshal(raw, &hit); jerr == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
                log.Warn().Str("key", key).Msg("cache: undecodable entry, refreshing")
            case err != redis.Nil:
                log.Warn().Err(err).Str("key", key).Msg("cache: redis get failed")
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.overflow {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      cw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        cw.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
            defer cancel()
            if err := rdb.Set(setCtx, key, payload, cfg.TTL).Err(); err != nil {
                log.Warn().Err(err).Str("key", key).Msg("cache: redis set failed")
            }
            return nil
        }
    }
}

// PurgeCache drops every cached variant of routes after a successful
// write, so admin changes show up before the TTL runs out.
func PurgeCache(cfg config.CacheConfig, rdb *redis.Client, log zerolog.Logger, routes ...string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := next(c); err != nil {
                return err
            }
            if st := c.Response().Status; st < 200 || st >= 300 {
                return nil
            }
            ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), time.Second)
            defer cancel()
            for _, route := range routes {
                if err := purgeRoute(ctx, rdb, routeKeyPrefix(cfg, route)); err != nil {
                    log.Warn().Err(err).Str("route", route).Msg("cache: purge failed")
                }
            }
            return nil
        }
    }
}

func purgeRoute(ctx context.Context, rdb *redis.Client, prefix string) error {
    var cursor uint64
    for {
        keys, next, err := rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
        if err != nil {
            return err
        }
        if len(keys) > 0 {
            if err := rdb.Del(ctx, keys...).Err(); err != nil {
                return err
            }
        }
        if next == 0 {
            return nil
        }
        cursor = next
    }
}

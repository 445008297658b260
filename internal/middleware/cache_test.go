package middleware

import (
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/go-redis/redismock/v9"
    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/club-ledger/internal/config"
)

var matchesBody = []byte(`{"success":true,"data":[]}`)

func cacheConfig() config.CacheConfig {
    return config.CacheConfig{Enabled: true, TTL: 30 * time.Second, Prefix: "club:cache", MaxBodyBytes: 1024}
}

func matchesKey(cfg config.CacheConfig, query string) string {
    return fmt.Sprintf("%s%x", routeKeyPrefix(cfg, "/matches"), sha1.Sum([]byte(query)))
}

func cachedServer(cfg config.CacheConfig, m *int) (*echo.Echo, redismock.ClientMock) {
    db, mock := redismock.NewClientMock()
    e := echo.New()
    e.GET("/matches", func(c echo.Context) error {
        *m++
        return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, matchesBody)
    }, NewResponseCache(cfg, db, zerolog.Nop()))
    e.POST("/admin/matches", func(c echo.Context) error {
        return c.NoContent(http.StatusCreated)
    }, PurgeCache(cfg, db, zerolog.Nop(), "/matches"))
    return e, mock
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
    return rec
}

func TestResponseCacheMissStores(t *testing.T) {
    cfg := cacheConfig()
    calls := 0
    e, m := cachedServer(cfg, &calls)

    payload, err := json.Marshal(cachedResponse{Status: http.StatusOK, ContentType: echo.MIMEApplicationJSON, Body: matchesBody})
    require.NoError(t, err)
    m.ExpectGet(matchesKey(cfg, "")).RedisNil()
    m.ExpectSet(matchesKey(cfg, ""), payload, cfg.TTL).SetVal("OK")

    rec := get(e, "/matches")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.Equal(t, string(matchesBody), rec.Body.String())
    assert.Equal(t, 1, calls)
    assert.NoError(t, m.ExpectationsWereMet())
}

func TestResponseCacheHitSkipsHandler(t *testing.T) {
    cfg := cacheConfig()
    calls := 0
    e, m := cachedServer(cfg, &calls)

    payload, err := json.Marshal(cachedResponse{Status: http.StatusOK, ContentType: echo.MIMEApplicationJSON, Body: matchesBody})
    require.NoError(t, err)
    m.ExpectGet(matchesKey(cfg, "page=2")).SetVal(string(payload))

    rec := get(e, "/matches?page=2")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
    assert.Equal(t, string(matchesBody), rec.Body.String())
    assert.Zero(t, calls)
    assert.NoError(t, m.ExpectationsWereMet())
}

func TestResponseCacheOversizedBodyNotStored(t *testing.T) {
    cfg := cacheConfig()
    cfg.MaxBodyBytes = 4
    calls := 0
    e, m := cachedServer(cfg, &calls)

    m.ExpectGet(matchesKey(cfg, "")).RedisNil()

    rec := get(e, "/matches")
    assert.Equal(t, string(matchesBody), rec.Body.String())
    assert.NoError(t, m.ExpectationsWereMet())
}

func TestResponseCacheRedisDown(t *testing.T) {
    cfg := cacheConfig()
    calls := 0
    e, m := cachedServer(cfg, &calls)

    m.ExpectGet(matchesKey(cfg, "")).SetErr(fmt.Errorf("connection refused"))
    m.ExpectSet(matchesKey(cfg, ""), mustPayload(t), cfg.TTL).SetErr(fmt.Errorf("connection refused"))

    rec := get(e, "/matches")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 1, calls)
}

func TestPurgeCacheAfterWrite(t *testing.T) {
    cfg := cacheConfig()
    calls := 0
    e, m := cachedServer(cfg, &calls)

    m.ExpectScan(0, routeKeyPrefix(cfg, "/matches")+"*", 100).SetVal([]string{matchesKey(cfg, "")}, 0)
    m.ExpectDel(matchesKey(cfg, "")).SetVal(1)

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/matches", nil))
    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.NoError(t, m.ExpectationsWereMet())
}

func TestCacheDisabledIsPassThrough(t *testing.T) {
    cfg := cacheConfig()
    cfg.Enabled = false
    calls := 0
    e, m := cachedServer(cfg, &calls)

    get(e, "/matches")
    get(e, "/matches")
    assert.Equal(t, 2, calls)
    assert.NoError(t, m.ExpectationsWereMet())
}

func mustPayload(t *testing.T) []byte {
    t.Helper()
    b, err := json.Marshal(cachedResponse{Status: http.StatusOK, ContentType: echo.MIMEApplicationJSON, Body: matchesBody})
    require.NoError(t, err)
    return b
}

package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/rs/zerolog"

    "github.com/iliyamo/club-ledger/internal/monitoring"
)

// RequestID tags every request with an X-Request-ID, reusing the one the
// client sent when present.
func RequestID() echo.MiddlewareFunc {
    return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        Generator: func() string { return uuid.NewString() },
    })
}

// RequestLogger writes one zerolog event per request.  Server errors log
// at error level, client errors at warn.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogRoutePath: true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            ev := log.Info()
            switch {
            case v.Status >= 500:
                ev = log.Error().Err(v.Error)
            case v.Status >= 400:
                ev = log.Warn()
            }
            ev.Str("method", v.Method).
                Str("uri", v.URI).
                Int("status", v.Status).
                Dur("latency", v.Latency).
                Str("remote_ip", v.RemoteIP).
                Str("request_id", v.RequestID).
                Msg("request")
            return nil
        },
    })
}

// Metrics records request latency labelled by the route template rather
// than the raw path.
func Metrics() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            status := c.Response().Status
            if err != nil {
                if he, ok := err.(*echo.HTTPError); ok {
                    status = he.Code
                }
            }
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            monitoring.ObserveHTTP(c.Request().Method, route, status, time.Since(start))
            return err
        }
    }
}

package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-ledger/internal/utils"
)

// Context keys set by JWTAuth.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
)

func deny(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and puts its user id (uint64) and role (string) on the context under
// CtxUserID and CtxRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            if !strings.HasPrefix(auth, "Bearer ") {
                return deny(c, http.StatusUnauthorized, "missing bearer token")
            }
            uid, role, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
            if err != nil {
                return deny(c, http.StatusUnauthorized, "invalid token")
            }
            c.Set(CtxUserID, uid)
            c.Set(CtxRole, role)
            return next(c)
        }
    }
}

// RequireRole admits requests whose JWTAuth role is one of roles and
// answers 403 otherwise.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]struct{}, len(roles))
    for _, r := range roles {
        allowed[r] = struct{}{}
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, _ := c.Get(CtxRole).(string)
            if _, ok := allowed[role]; !ok {
                return deny(c, http.StatusForbidden, "forbidden")
            }
            return next(c)
        }
    }
}

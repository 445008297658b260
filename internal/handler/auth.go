package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-ledger/internal/middleware"
    "github.com/iliyamo/club-ledger/internal/model"
    "github.com/iliyamo/club-ledger/internal/repository"
    "github.com/iliyamo/club-ledger/internal/utils"
)

// AuthHandler issues admin access tokens.
type AuthHandler struct {
    Options
    Users     *repository.UserRepo
    JWTSecret string
    TTLMin    int
}

func NewAuthHandler(users *repository.UserRepo, secret string, ttlMin int, opts Options) *AuthHandler {
    return &AuthHandler{Options: opts, Users: users, JWTSecret: secret, TTLMin: ttlMin}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type loginResp struct {
    AccessToken string     `json:"access_token"`
    ExpiresAt   time.Time  `json:"expires_at"`
    User        model.User `json:"user"`
}

// Login handles POST /auth/login.  Every rejection answers the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return invalidCredentials(c)
        }
        return h.fail(c, err)
    }
    if !u.CanSignIn() || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        h.Logger.Warn().Str("email", req.Email).Msg("login rejected")
        return invalidCredentials(c)
    }

    access, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.TTLMin)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, loginResp{
        AccessToken: access.Token,
        ExpiresAt:   access.Exp,
        User:        u,
    })
}

// Me handles GET /admin/me.
func (h *AuthHandler) Me(c echo.Context) error {
    return ok(c, http.StatusOK, echo.Map{
        "user_id": c.Get(middleware.CtxUserID),
        "role":    c.Get(middleware.CtxRole),
    })
}

func invalidCredentials(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, Envelope{Message: "invalid credentials"})
}

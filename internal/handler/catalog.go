package handler

import (
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-ledger/internal/model"
    "github.com/iliyamo/club-ledger/internal/repository"
    "github.com/iliyamo/club-ledger/internal/service"
    "github.com/iliyamo/club-ledger/internal/utils"
)

// CatalogHandler serves the fixtures and squad listings the ledger
// depends on, plus the minimal admin writes that populate them.
type CatalogHandler struct {
    Options
    Matches *repository.MatchRepo
    Players *repository.PlayerRepo
}

func NewCatalogHandler(matches *repository.MatchRepo, players *repository.PlayerRepo, opts Options) *CatalogHandler {
    if matches == nil || players == nil {
        panic("nil repository passed to NewCatalogHandler")
    }
    return &CatalogHandler{Options: opts, Matches: matches, Players: players}
}

type createMatchReq struct {
    Opponent    string `json:"opponent" validate:"required,max=255"`
    MatchDate   string `json:"match_date" validate:"required"`
    Venue       string `json:"venue" validate:"required,max=255"`
    Competition string `json:"competition" validate:"max=255"`
    IsHome      bool   `json:"is_home"`
}

type createPlayerReq struct {
    Name         string  `json:"name" validate:"required,max=255"`
    Position     string  `json:"position" validate:"required,max=50"`
    JerseyNumber *uint32 `json:"jersey_number" validate:"omitempty,gte=1,lte=99"`
    Nationality  string  `json:"nationality" validate:"max=100"`
}

// ListMatches handles GET /matches.
func (h *CatalogHandler) ListMatches(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    list, err := h.Matches.List(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, list)
}

// CreateMatch handles POST /admin/matches.
func (h *CatalogHandler) CreateMatch(c echo.Context) error {
    var req createMatchReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    var when utils.Timestamp
    if err := when.Scan(req.MatchDate); err != nil {
        return h.fail(c, &service.ValidationError{Field: "match_date", Message: "must be a date or RFC3339 timestamp"})
    }
    m := &model.Match{
        Opponent:    strings.TrimSpace(req.Opponent),
        MatchDate:   when,
        Venue:       strings.TrimSpace(req.Venue),
        Competition: strings.TrimSpace(req.Competition),
        IsHome:      req.IsHome,
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Matches.Create(ctx, m); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, m)
}

// DeleteMatch handles DELETE /admin/matches/:id.  The match's bookings go
// with it.
func (h *CatalogHandler) DeleteMatch(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Matches.Delete(ctx, id); err != nil {
        if err == repository.ErrNotFound {
            err = fmt.Errorf("match %d: %w", id, service.ErrNotFound)
        }
        return h.fail(c, err)
    }
    return okMessage(c, "match deleted")
}

// ListPlayers handles GET /players.
func (h *CatalogHandler) ListPlayers(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    list, err := h.Players.List(ctx)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, list)
}

// CreatePlayer handles POST /admin/players.
func (h *CatalogHandler) CreatePlayer(c echo.Context) error {
    var req createPlayerReq
    if err := bindAndValidate(c, &req); err != nil {
        return h.fail(c, err)
    }
    p := &model.Player{
        Name:         strings.TrimSpace(req.Name),
        Position:     strings.TrimSpace(req.Position),
        JerseyNumber: req.JerseyNumber,
        Nationality:  strings.TrimSpace(req.Nationality),
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Players.Create(ctx, p); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, p)
}

package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "errors"
    "net/http"
    "reflect"
    "strconv"
    "strings"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/club-ledger/internal/repository"
    "github.com/iliyamo/club-ledger/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

// Envelope is the JSON shape of every response.
type Envelope struct {
    Success bool                      `json:"success"`
    Data    any                       `json:"data,omitempty"`
    Message string                    `json:"message,omitempty"`
    Errors  []service.ValidationError `json:"errors,omitempty"`
    Error   string                    `json:"error,omitempty"` // internal detail, non-prod only
}

// Options are shared by every handler.
type Options struct {
    Logger zerolog.Logger
    // ExposeErrors adds the raw storage error to 500 responses.
    ExposeErrors bool
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func ok(c echo.Context, status int, data any) error {
    return c.JSON(status, Envelope{Success: true, Data: data})
}

func okMessage(c echo.Context, msg string) error {
    return c.JSON(http.StatusOK, Envelope{Success: true, Message: msg})
}

// fail maps service errors onto status codes.  Anything unrecognised is a
// storage fault: logged in full, reported to the client as a bare 500.
func (o Options) fail(c echo.Context, err error) error {
    var (
        verrs ValidationErrors
        verr  *service.ValidationError
        herr  *echo.HTTPError
    )
    switch {
    case errors.As(err, &verrs):
        return c.JSON(http.StatusBadRequest, Envelope{Message: "validation failed", Errors: verrs})
    case errors.As(err, &verr):
        return c.JSON(http.StatusBadRequest, Envelope{Message: "validation failed", Errors: []service.ValidationError{*verr}})
    case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, Envelope{Message: err.Error()})
    case errors.Is(err, service.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, Envelope{Message: err.Error()})
    case errors.Is(err, service.ErrPricingUnavailable):
        o.Logger.Error().Err(err).Str("path", c.Path()).Msg("pricing unavailable")
        return c.JSON(http.StatusInternalServerError, Envelope{Message: service.ErrPricingUnavailable.Error()})
    case errors.Is(err, service.ErrReferenceExhausted):
        o.Logger.Error().Err(err).Str("path", c.Path()).Msg("booking reference space exhausted")
        return c.JSON(http.StatusInternalServerError, Envelope{Message: service.ErrReferenceExhausted.Error()})
    case errors.As(err, &herr):
        return c.JSON(herr.Code, Envelope{Message: httpMessage(herr)})
    }

    o.Logger.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("storage fault")
    body := Envelope{Message: "internal server error"}
    if o.ExposeErrors {
        body.Error = err.Error()
    }
    return c.JSON(http.StatusInternalServerError, body)
}

func httpMessage(he *echo.HTTPError) string {
    if s, ok := he.Message.(string); ok {
        return s
    }
    return http.StatusText(he.Code)
}

// ErrorHandler renders errors that reach echo (unknown routes, bad
// methods, panics recovered upstream) in the response envelope.
func ErrorHandler(opts Options) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        if ferr := opts.fail(c, err); ferr != nil {
            opts.Logger.Error().Err(ferr).Msg("write error response")
        }
    }
}

// bindErr reports a malformed body.
func bindErr(err error) error {
    return &service.ValidationError{Field: "body", Message: "must be valid JSON: " + bindDetail(err)}
}

func bindDetail(err error) string {
    var he *echo.HTTPError
    if errors.As(err, &he) {
        if he.Internal != nil {
            return he.Internal.Error()
        }
        return httpMessage(he)
    }
    return err.Error()
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
    }
    return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string) (int, bool, error) {
    raw := strings.TrimSpace(c.QueryParam(name))
    if raw == "" {
        return 0, false, nil
    }
    n, err := strconv.Atoi(raw)
    if err != nil {
        return 0, false, &service.ValidationError{Field: name, Message: "must be an integer"}
    }
    return n, true, nil
}

// ----- request validation -----

// ValidationErrors is a list of rejected fields produced by Validator.
type ValidationErrors []service.ValidationError

func (v ValidationErrors) Error() string {
    parts := make([]string, len(v))
    for i := range v {
        parts[i] = v[i].Error()
    }
    return strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error { return service.ErrValidation }

// Validator adapts go-playground/validator to echo.Validator and reports
// fields by their JSON names.
type Validator struct {
    v *validator.Validate
}

// NewValidator returns the request validator installed on the echo server.
func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        if name == "" {
            return f.Name
        }
        return name
    })
    return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
    err := cv.v.Struct(i)
    if err == nil {
        return nil
    }
    var fes validator.ValidationErrors
    if !errors.As(err, &fes) {
        return err
    }
    out := make(ValidationErrors, 0, len(fes))
    for _, fe := range fes {
        out = append(out, fieldError(fe))
    }
    return out
}

func fieldError(fe validator.FieldError) service.ValidationError {
    ve := service.ValidationError{Field: fe.Field()}
    switch fe.Tag() {
    case "required":
        ve.Message = "is required"
    case "email":
        ve.Message = "must be a valid email address"
    case "max":
        ve.Message = "must be at most " + fe.Param() + " characters"
    case "gt":
        ve.Message = "must be greater than " + fe.Param()
    case "gte":
        ve.Message = "must be at least " + fe.Param()
    case "oneof":
        ve.Message = "must be one of the allowed values"
        ve.Allowed = strings.Fields(fe.Param())
    default:
        ve.Message = "is invalid"
    }
    return ve
}

// bindAndValidate binds the body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
    if err := c.Bind(req); err != nil {
        return bindErr(err)
    }
    return c.Validate(req)
}

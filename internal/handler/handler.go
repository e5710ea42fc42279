package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"exam-scheduler/internal/auth"
	"exam-scheduler/internal/middleware"
	"exam-scheduler/internal/scheduling"
)

type Handler struct {
	svc      *scheduling.Service
	accounts *auth.Accounts
	log      zerolog.Logger

	requireAuth  bool
	secureCookie bool
}

type Option func(*Handler)

// WithAccounts enables the /auth routes.
func WithAccounts(a *auth.Accounts) Option { return func(h *Handler) { h.accounts = a } }

// WithRequiredAuth guards every mutating route with a bearer token. It has
// no effect without accounts.
func WithRequiredAuth(on bool) Option { return func(h *Handler) { h.requireAuth = on } }

// WithSecureCookies marks auth cookies Secure.
func WithSecureCookies(on bool) Option { return func(h *Handler) { h.secureCookie = on } }

func New(svc *scheduling.Service, log zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{svc: svc, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Limits carries the per-route-group rate limiters; nil disables one.
type Limits struct {
	API  *middleware.RateLimiter
	Auth *middleware.RateLimiter
}

// RegisterRoutes mounts the REST API on g.
func (h *Handler) RegisterRoutes(g *echo.Group, limits Limits) {
	if limits.API != nil {
		g.Use(middleware.RateLimit(limits.API))
	}

	var write []echo.MiddlewareFunc
	if h.requireAuth && h.accounts != nil {
		write = append(write, middleware.RequireAuth(h.accounts.Tokens()))
	}

	g.GET("/exams", h.ListExams)
	g.GET("/exams/specialty/:specialty", h.ExamsBySpecialty)
	g.GET("/exams/:id", h.GetExam)
	g.POST("/exams", h.CreateExam, write...)
	g.PUT("/exams/:id", h.UpdateExam, write...)
	g.DELETE("/exams/:id", h.DeleteExam, write...)

	g.GET("/appointments", h.ListAppointments)
	g.GET("/appointments/:id", h.GetAppointment)
	g.POST("/appointments", h.CreateAppointment, write...)
	g.PUT("/appointments/:id", h.UpdateAppointment, write...)
	g.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus, write...)
	g.DELETE("/appointments/:id", h.DeleteAppointment, write...)

	if h.accounts != nil {
		ag := g.Group("/auth")
		if limits.Auth != nil {
			ag.Use(middleware.RateLimit(limits.Auth))
		}
		ag.POST("/register", h.Register)
		ag.POST("/login", h.Login)
		ag.POST("/refresh", h.Refresh)
		ag.POST("/logout", h.Logout)
	}
}

// Info describes the service at GET /.
func Info(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"message": "Exam scheduling API",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"exams":        prefix + "/exams",
				"appointments": prefix + "/appointments",
				"health":       prefix + "/health",
			},
		})
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorHandler renders every failure as {"error": "..."}. Internal errors
// are logged and never leak details to the client.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := statusFor(err)
		if code >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", fmt.Sprintf("%v", c.Get("request_id"))).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, errorBody{Error: msg})
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}

func statusFor(err error) (int, string) {
	switch sentinel := scheduling.Classify(err); sentinel {
	case scheduling.ErrMissingField, scheduling.ErrInvalidField,
		scheduling.ErrPastOrPresentDate, scheduling.ErrInvalidStatus:
		return http.StatusBadRequest, err.Error()
	case scheduling.ErrExamNotFound, scheduling.ErrNotFound:
		return http.StatusNotFound, err.Error()
	case scheduling.ErrSlotConflict, scheduling.ErrIllegalTransition, scheduling.ErrExamInUse:
		return http.StatusConflict, err.Error()
	}

	switch {
	case errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrRegistration):
		return http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidRefresh):
		return http.StatusUnauthorized, err.Error()
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, "internal server error"
		}
		if s, ok := he.Message.(string); ok {
			return he.Code, s
		}
		return he.Code, http.StatusText(he.Code)
	}
	return http.StatusInternalServerError, "internal server error"
}

// pathID parses :id. Anything that is not a positive integer names no
// record, so it maps to notFound.
func pathID(c echo.Context, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}

func bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}
	return nil
}

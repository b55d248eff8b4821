package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"taskapi/internal/middleware"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves liveness and API information.
type HealthHandler struct {
	version string
	db      Pinger
	cache   Pinger
	now     func() time.Time
}

// NewHealthHandler creates a health handler. Nil pingers are reported as disabled.
func NewHealthHandler(version string, db, cache Pinger) *HealthHandler {
	return &HealthHandler{version: version, db: db, cache: cache, now: time.Now}
}

// HealthResponse describes the service and its dependencies.
type HealthResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// APIInfoResponse describes the API, and the caller when authenticated.
type APIInfoResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Version string      `json:"version"`
	User    interface{} `json:"user,omitempty"`
}

// Liveness answers as long as the process serves requests.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": check(ctx, h.db),
		"cache":    check(ctx, h.cache),
	}

	resp := HealthResponse{
		Status:    statusSuccess,
		Message:   "Task API is running",
		Timestamp: h.now().UTC(),
		Checks:    checks,
	}
	code := http.StatusOK
	// the cache is optional; only the database makes the service unhealthy
	if checks["database"] == "down" {
		resp.Status = "error"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

// Info godoc
// @Summary API information
// @Tags system
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIInfoResponse
// @Router / [get]
func (h *HealthHandler) Info(c echo.Context) error {
	resp := APIInfoResponse{
		Status:  statusSuccess,
		Message: "Task API",
		Version: h.version,
	}
	if id, found := middleware.CurrentIdentity(c); found {
		resp.User = id
	}
	return c.JSON(http.StatusOK, resp)
}

func check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

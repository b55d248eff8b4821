package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/logger"
	"taskapi/internal/ratelimit"
)

// RateLimit applies policy p per client address. Rejected requests carry a
// Retry-After header and fail with a *errors.RateLimitError.
func RateLimit(l *ratelimit.Limiter, p ratelimit.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := l.Allow(p, c.RealIP())

			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(p.Max))
			h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(d.RetryAfter))
				logger.RateLimit().Warnf("%s policy rejected %s, retry in %ds", p.Name, c.RealIP(), d.RetryAfter)
				return &apperrors.RateLimitError{
					Policy:            p.Name,
					Message:           p.Message,
					RetryAfterSeconds: d.RetryAfter,
				}
			}
			return next(c)
		}
	}
}

package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"taskapi/internal/auth"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/logger"
	"taskapi/internal/model"
)

// IdentityKey is the echo context key holding the authenticated auth.Identity.
const IdentityKey = "identity"

// IdentityLookup resolves the identity a token names.
type IdentityLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// AuthConfig configures the access-control middleware.
type AuthConfig struct {
	Tokens *auth.TokenService
	Users  IdentityLookup
	// EnforcePasswordChange rejects tokens issued before the identity's last password change.
	EnforcePasswordChange bool
}

// RequireAuth admits only requests carrying a valid bearer token for an
// existing, active identity. Every other request fails with one of
// ErrUnauthenticated, ErrTokenExpired, ErrTokenMalformed or ErrIdentityGone.
func RequireAuth(cfg AuthConfig) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     IdentityKey,
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: cfg.parseToken,
		ErrorHandler: func(c echo.Context, err error) error {
			denied := classify(err)
			logger.Auth().Debugf("access denied %s %s: %v", c.Request().Method, c.Path(), err)
			return denied
		},
	})
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(cfg AuthConfig) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             IdentityKey,
		TokenLookup:            "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc:         cfg.parseToken,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

// CurrentIdentity returns the identity attached by RequireAuth or OptionalAuth.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(IdentityKey).(auth.Identity)
	return id, ok
}

// parseToken verifies the credential and resolves its identity. The returned
// value is what echo-jwt stores under IdentityKey.
func (cfg AuthConfig) parseToken(c echo.Context, token string) (interface{}, error) {
	claims, err := cfg.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not an id", apperrors.ErrTokenMalformed)
	}

	user, err := cfg.Users.FindByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrIdentityGone
		}
		return nil, &storageError{err: err}
	}
	if !user.Active {
		return nil, apperrors.ErrIdentityGone
	}
	if cfg.EnforcePasswordChange && user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, fmt.Errorf("%w: password changed after token was issued", apperrors.ErrTokenExpired)
	}

	id := auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name}
	c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
	return id, nil
}

// classify keeps the token and identity failures and turns everything else
// (no header, wrong scheme) into ErrUnauthenticated. Storage failures are
// passed through so they surface as internal errors.
func classify(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenMalformed),
		errors.Is(err, apperrors.ErrIdentityGone):
		return err
	case isStorageError(err):
		return err
	default:
		return apperrors.ErrUnauthenticated
	}
}

// storageError marks identity lookups that failed for reasons other than absence.
type storageError struct{ err error }

func (e *storageError) Error() string { return "identity lookup: " + e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

func isStorageError(err error) bool {
	var se *storageError
	return errors.As(err, &se)
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "taskapi/internal/errors"
)

const (
	// DefaultTokenExpiry is the lifetime of a token when none is configured.
	DefaultTokenExpiry = 7 * 24 * time.Hour
	// DefaultIssuer is the issuer embedded in every token.
	DefaultIssuer = "taskapi"
	// DefaultAudience is the audience embedded in every token.
	DefaultAudience = "taskapi-client"
)

// Claims represents JWT claims.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenService. Zero fields take defaults.
type TokenConfig struct {
	Secret   string
	Expiry   time.Duration
	Issuer   string
	Audience string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// TokenService issues and verifies signed, time-bound identity tokens.
// It holds no state besides its configuration.
type TokenService struct {
	secret   []byte
	expiry   time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenService creates a token service from cfg.
func NewTokenService(cfg TokenConfig) *TokenService {
	s := &TokenService{
		secret:   []byte(cfg.Secret),
		expiry:   cfg.Expiry,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      cfg.Now,
	}
	if s.expiry <= 0 {
		s.expiry = DefaultTokenExpiry
	}
	if s.issuer == "" {
		s.issuer = DefaultIssuer
	}
	if s.audience == "" {
		s.audience = DefaultAudience
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue signs a token for the given identity.
func (s *TokenService) Issue(userID, email string) (string, error) {
	if userID == "" || email == "" {
		return "", errors.New("issue token: user id and email are required")
	}

	now := s.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and returns its claims.
// It fails with ErrTokenExpired for a correctly signed token past its expiry
// and with ErrTokenMalformed for every other defect.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if isOnlyExpired(err) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenMalformed, err)
	}

	if claims.UserID == "" || claims.Email == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing identity claims", apperrors.ErrTokenMalformed)
	}

	return claims, nil
}

// isOnlyExpired is true when expiry is the token's sole defect. A token that is
// also forged or addressed to someone else is malformed, not expired.
func isOnlyExpired(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}
	return !errors.Is(err, jwt.ErrTokenSignatureInvalid) &&
		!errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
		!errors.Is(err, jwt.ErrTokenInvalidAudience)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskapi/internal/auth"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/logger"
	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// SignupInput is the data needed to create an identity.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (user *model.User, token string, err error)
	Login(ctx context.Context, email, password string) (user *model.User, token string, err error)
	Refresh(ctx context.Context, id auth.Identity) (token string, err error)
	Me(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	hasher auth.PasswordHasher
	now    func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, hasher auth.PasswordHasher) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		now:    time.Now,
	}
}

// Signup creates an identity with a hashed password and returns a token for it.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, string, error) {
	email := model.NormalizeEmail(in.Email)

	// Check if the email is already registered; the unique index still backs this up
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID.String(), user.Email)
	if err != nil {
		return nil, "", err
	}

	logger.Auth().Infof("identity created: %s", user.ID)
	return user, token, nil
}

// Login verifies credentials, records the login time and returns a fresh token.
// Unknown email, inactive identity and wrong password are indistinguishable.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Auth().Debug("login rejected: unknown email")
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.Active || !s.hasher.Verify(password, user.PasswordHash) {
		logger.Auth().Debugf("login rejected for %s", user.ID)
		return nil, "", apperrors.ErrInvalidCredentials
	}

	loginAt := s.now()
	if updated, err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"last_login": loginAt}); err != nil {
		logger.Auth().Warnf("record last login for %s: %v", user.ID, err)
		user.LastLogin = &loginAt
	} else {
		user = updated
	}

	token, err := s.tokens.Issue(user.ID.String(), user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Refresh issues a new token for an already authenticated identity.
func (s *authService) Refresh(ctx context.Context, id auth.Identity) (string, error) {
	return s.tokens.Issue(id.ID.String(), id.Email)
}

// Me returns the stored identity.
func (s *authService) Me(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

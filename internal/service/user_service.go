package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskapi/internal/auth"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/logger"
	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// ProfileUpdate holds the profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	Name   *string
	Bio    *string
	Avatar *string
}

// UserService exposes profile and account operations on the caller's own identity.
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type userService struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
	cache  StatsCache
	now    func() time.Time
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, statsCache StatsCache) UserService {
	return &userService{repo: repo, hasher: hasher, cache: orDisabled(statsCache), now: time.Now}
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*model.User, error) {
	fields := map[string]interface{}{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.Avatar != nil {
		fields["avatar"] = *upd.Avatar
	}
	if len(fields) == 0 {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.UpdateFields(ctx, id, fields)
}

// ChangePassword replaces the password hash after checking the current
// password, and stamps the change time.
func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return apperrors.ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	_, err = s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"password_hash":       hash,
		"password_changed_at": s.now(),
	})
	if err != nil {
		return err
	}

	logger.Auth().Infof("password changed for %s", id)
	return nil
}

// DeleteAccount removes the identity and all of its tasks once the password is confirmed.
func (s *userService) DeleteAccount(ctx context.Context, id uuid.UUID, password string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return apperrors.ErrIncorrectPassword
	}

	if err := s.repo.DeleteWithTasks(ctx, id); err != nil {
		return err
	}
	invalidateStats(ctx, s.cache, id)

	logger.Auth().Infof("account deleted: %s", id)
	return nil
}

package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"taskapi/internal/cache"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/logger"
	"taskapi/internal/model"
	"taskapi/internal/query"
	"taskapi/internal/repository"
)

const (
	statsCacheTTL = 5 * time.Minute
	// statsVersionTTL outlives every stats entry, so an expired version
	// counter can never resurrect an old entry.
	statsVersionTTL = 24 * time.Hour
)

// StatsCache is the part of the redis cache the services use. A nil
// *cache.Client satisfies it as a disabled cache.
type StatsCache interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Version(ctx context.Context, key string) int64
	Bump(ctx context.Context, key string, ttl time.Duration) bool
}

func orDisabled(c StatsCache) StatsCache {
	if c == nil {
		return (*cache.Client)(nil)
	}
	return c
}

func statsVersionKey(owner uuid.UUID) string {
	return "tasks:stats:ver:" + owner.String()
}

// statsCacheKey names the entry for one version of an owner's tasks. Writes
// bump the version, so an entry computed before a write is never read after it.
func statsCacheKey(owner uuid.UUID, version int64) string {
	return "tasks:stats:" + owner.String() + ":" + strconv.FormatInt(version, 10)
}

func invalidateStats(ctx context.Context, c StatsCache, owner uuid.UUID) {
	if !c.Bump(ctx, statsVersionKey(owner), statsVersionTTL) {
		logger.Tasks().Debugf("stats version bump for %s did not reach redis", owner)
	}
}

// TaskInput is a new task. Zero Status and Priority take the defaults.
type TaskInput struct {
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	DueDate     *time.Time
	Tags        []string
}

// TaskUpdate replaces the given fields of a task. Nil fields are kept;
// ClearDueDate removes the due date.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *model.TaskStatus
	Priority     *model.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	Tags         []string
}

// TaskService exposes task operations, all scoped to the calling owner.
type TaskService interface {
	Create(ctx context.Context, owner uuid.UUID, in TaskInput) (*model.Task, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, owner uuid.UUID, params query.ListParams) (query.TaskPage, error)
	Update(ctx context.Context, owner, id uuid.UUID, upd TaskUpdate) (*model.Task, error)
	SetStatus(ctx context.Context, owner, id uuid.UUID, status model.TaskStatus) (*model.Task, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	ClearCompleted(ctx context.Context, owner uuid.UUID) (int64, error)
	Stats(ctx context.Context, owner uuid.UUID) (model.TaskStats, error)
}

type taskService struct {
	repo  repository.TaskRepository
	cache StatsCache
	now   func() time.Time
}

// NewTaskService creates a task service. A nil clock means time.Now.
func NewTaskService(repo repository.TaskRepository, statsCache StatsCache, now func() time.Time) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskService{repo: repo, cache: orDisabled(statsCache), now: now}
}

func (s *taskService) Create(ctx context.Context, owner uuid.UUID, in TaskInput) (*model.Task, error) {
	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	priority := in.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}
	if err := checkEnums(&status, &priority); err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	task := &model.Task{
		ID:          uuid.New(),
		UserID:      owner,
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		DueDate:     in.DueDate,
		Tags:        tags,
	}
	task.SetStatus(status, s.now())

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, owner)
	return task, nil
}

func (s *taskService) Get(ctx context.Context, owner, id uuid.UUID) (*model.Task, error) {
	return s.repo.FindOwned(ctx, owner, id)
}

func (s *taskService) List(ctx context.Context, owner uuid.UUID, params query.ListParams) (query.TaskPage, error) {
	q := query.NewTaskQuery(owner, params)
	tasks, total, err := s.repo.List(ctx, q)
	if err != nil {
		return query.TaskPage{}, err
	}
	return query.NewTaskPage(q, tasks, total), nil
}

// Update applies upd to an owned task. A status change goes through
// Task.SetStatus like every other status write.
func (s *taskService) Update(ctx context.Context, owner, id uuid.UUID, upd TaskUpdate) (*model.Task, error) {
	if err := checkEnums(upd.Status, upd.Priority); err != nil {
		return nil, err
	}

	task, err := s.repo.UpdateOwned(ctx, owner, id, func(t *model.Task) error {
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Priority != nil {
			t.Priority = *upd.Priority
		}
		switch {
		case upd.ClearDueDate:
			t.DueDate = nil
		case upd.DueDate != nil:
			t.DueDate = upd.DueDate
		}
		if upd.Tags != nil {
			t.Tags = upd.Tags
		}
		if upd.Status != nil {
			t.SetStatus(*upd.Status, s.now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, owner)
	return task, nil
}

func (s *taskService) SetStatus(ctx context.Context, owner, id uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	if err := checkEnums(&status, nil); err != nil {
		return nil, err
	}

	task, err := s.repo.UpdateOwned(ctx, owner, id, func(t *model.Task) error {
		t.SetStatus(status, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, owner)
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteOwned(ctx, owner, id); err != nil {
		return err
	}
	s.invalidateStats(ctx, owner)
	return nil
}

func (s *taskService) ClearCompleted(ctx context.Context, owner uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteCompleted(ctx, owner)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateStats(ctx, owner)
	}
	logger.Tasks().Debugf("cleared %d completed tasks for %s", n, owner)
	return n, nil
}

// Stats serves the aggregate from redis when present, and computes and
// caches it otherwise. The version is read before the aggregate, so a write
// that lands in between leaves the new entry under a superseded key.
func (s *taskService) Stats(ctx context.Context, owner uuid.UUID) (model.TaskStats, error) {
	key := statsCacheKey(owner, s.cache.Version(ctx, statsVersionKey(owner)))

	var cached model.TaskStats
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	stats, err := s.repo.Stats(ctx, owner)
	if err != nil {
		return model.TaskStats{}, err
	}
	s.cache.SetJSON(ctx, key, stats, statsCacheTTL)
	return stats, nil
}

func (s *taskService) invalidateStats(ctx context.Context, owner uuid.UUID) {
	invalidateStats(ctx, s.cache, owner)
}

func checkEnums(status *model.TaskStatus, priority *model.TaskPriority) error {
	var violations []string
	if status != nil && !status.Valid() {
		violations = append(violations, "status must be one of: pending, in-progress, completed")
	}
	if priority != nil && !priority.Valid() {
		violations = append(violations, "priority must be one of: low, medium, high")
	}
	return apperrors.NewValidationError(violations)
}

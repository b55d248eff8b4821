package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
	"taskapi/internal/query"
)

// MockTaskRepository is a mock implementation of TaskRepository.
// UpdateOwned applies mutate to the task the expectation returns.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) FindOwned(ctx context.Context, owner, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, q query.TaskQuery) ([]model.Task, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Task), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskRepository) UpdateOwned(ctx context.Context, owner, id uuid.UUID, mutate func(task *model.Task) error) (*model.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	task := args.Get(0).(*model.Task)
	if err := mutate(task); err != nil {
		return nil, err
	}
	return task, args.Error(1)
}

func (m *MockTaskRepository) DeleteOwned(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteCompleted(ctx context.Context, owner uuid.UUID) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) Stats(ctx context.Context, owner uuid.UUID) (model.TaskStats, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(model.TaskStats), args.Error(1)
}

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestTaskService(repo *MockTaskRepository) TaskService {
	return NewTaskService(repo, nil, func() time.Time { return fixedNow })
}

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name          string
		input         TaskInput
		check         func(*testing.T, *model.Task)
		expectedError bool
	}{
		{
			name:  "defaults",
			input: TaskInput{Title: "T1"},
			check: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.TaskStatusPending, task.Status)
				assert.Equal(t, model.TaskPriorityMedium, task.Priority)
				assert.Nil(t, task.CompletedAt)
				assert.Equal(t, []string{}, task.Tags)
			},
		},
		{
			name:  "created completed",
			input: TaskInput{Title: "T1", Status: model.TaskStatusCompleted, Priority: model.TaskPriorityHigh},
			check: func(t *testing.T, task *model.Task) {
				require.NotNil(t, task.CompletedAt)
				assert.Equal(t, fixedNow, *task.CompletedAt)
				assert.Equal(t, model.TaskPriorityHigh, task.Priority)
			},
		},
		{
			name:          "invalid enums",
			input:         TaskInput{Title: "T1", Status: "done", Priority: "urgent"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			owner := uuid.New()
			if !tt.expectedError {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			}

			task, err := newTestTaskService(repo).Create(context.Background(), owner, tt.input)

			if tt.expectedError {
				var verr *apperrors.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Len(t, verr.Violations, 2)
				assert.Nil(t, task)
			} else {
				require.NoError(t, err)
				assert.Equal(t, owner, task.UserID)
				tt.check(t, task)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTaskService_StatusTransitionsMaintainCompletedAt(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	completed := model.TaskStatusCompleted
	pending := model.TaskStatusPending
	earlier := fixedNow.Add(-time.Hour)

	tests := []struct {
		name    string
		start   model.Task
		run     func(TaskService) (*model.Task, error)
		wantAt  *time.Time
		wantSts model.TaskStatus
	}{
		{
			name:    "patch into completed",
			start:   model.Task{Status: model.TaskStatusPending},
			run:     func(s TaskService) (*model.Task, error) { return s.SetStatus(context.Background(), owner, id, completed) },
			wantAt:  &fixedNow,
			wantSts: completed,
		},
		{
			name:    "full update into completed",
			start:   model.Task{Status: model.TaskStatusInProgress},
			run:     func(s TaskService) (*model.Task, error) { return s.Update(context.Background(), owner, id, TaskUpdate{Status: &completed}) },
			wantAt:  &fixedNow,
			wantSts: completed,
		},
		{
			name:    "patch out of completed",
			start:   model.Task{Status: model.TaskStatusCompleted, CompletedAt: &earlier},
			run:     func(s TaskService) (*model.Task, error) { return s.SetStatus(context.Background(), owner, id, pending) },
			wantSts: pending,
		},
		{
			name:    "full update out of completed",
			start:   model.Task{Status: model.TaskStatusCompleted, CompletedAt: &earlier},
			run:     func(s TaskService) (*model.Task, error) { return s.Update(context.Background(), owner, id, TaskUpdate{Status: &pending}) },
			wantSts: pending,
		},
		{
			name:    "update without status keeps completion",
			start:   model.Task{Status: model.TaskStatusCompleted, CompletedAt: &earlier},
			run:     func(s TaskService) (*model.Task, error) { return s.Update(context.Background(), owner, id, TaskUpdate{}) },
			wantAt:  &earlier,
			wantSts: completed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			start := tt.start
			repo.On("UpdateOwned", mock.Anything, owner, id).Return(&start, nil)

			task, err := tt.run(newTestTaskService(repo))
			require.NoError(t, err)

			assert.Equal(t, tt.wantSts, task.Status)
			if tt.wantAt == nil {
				assert.Nil(t, task.CompletedAt)
			} else {
				require.NotNil(t, task.CompletedAt)
				assert.Equal(t, *tt.wantAt, *task.CompletedAt)
			}
		})
	}
}

func TestTaskService_UpdateFields(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	title := "renamed"
	high := model.TaskPriorityHigh

	repo := new(MockTaskRepository)
	start := &model.Task{Title: "T1", Description: "keep", Priority: model.TaskPriorityLow, DueDate: &due, Tags: []string{"a"}}
	repo.On("UpdateOwned", mock.Anything, owner, id).Return(start, nil)

	task, err := newTestTaskService(repo).Update(context.Background(), owner, id, TaskUpdate{
		Title:        &title,
		Priority:     &high,
		ClearDueDate: true,
		Tags:         []string{"b", "c"},
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed", task.Title)
	assert.Equal(t, "keep", task.Description)
	assert.Equal(t, model.TaskPriorityHigh, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, []string{"b", "c"}, task.Tags)
}

func TestTaskService_SetStatusRejectsUnknownStatus(t *testing.T) {
	repo := new(MockTaskRepository)

	_, err := newTestTaskService(repo).SetStatus(context.Background(), uuid.New(), uuid.New(), "archived")

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	repo.AssertNotCalled(t, "UpdateOwned", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_NotOwnedIsNotFound(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	repo := new(MockTaskRepository)
	repo.On("FindOwned", mock.Anything, owner, id).Return(nil, apperrors.ErrNotFound)
	repo.On("UpdateOwned", mock.Anything, owner, id).Return(nil, apperrors.ErrNotFound)
	repo.On("DeleteOwned", mock.Anything, owner, id).Return(apperrors.ErrNotFound)

	svc := newTestTaskService(repo)
	ctx := context.Background()

	_, err := svc.Get(ctx, owner, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.SetStatus(ctx, owner, id, model.TaskStatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, owner, id), apperrors.ErrNotFound)
}

func TestTaskService_List(t *testing.T) {
	owner := uuid.New()
	repo := new(MockTaskRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(q query.TaskQuery) bool {
		return q.OwnerID == owner && q.Page == 2 && q.Limit == 10 && q.Priority == model.TaskPriorityHigh
	})).Return([]model.Task{{Title: "T11"}}, int64(11), nil)

	page, err := newTestTaskService(repo).List(context.Background(), owner, query.ListParams{
		Priority: model.TaskPriorityHigh,
		Page:     2,
		Limit:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 1)
	repo.AssertExpectations(t)
}

func TestTaskService_StatsAndClearCompleted(t *testing.T) {
	owner := uuid.New()
	repo := new(MockTaskRepository)
	want := model.TaskStats{Total: 3, Pending: 1, Completed: 2, HighPriority: 1}
	repo.On("Stats", mock.Anything, owner).Return(want, nil)
	repo.On("DeleteCompleted", mock.Anything, owner).Return(int64(2), nil)

	svc := newTestTaskService(repo)

	stats, err := svc.Stats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, want, stats)

	n, err := svc.ClearCompleted(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTaskService_StorageErrorsPropagate(t *testing.T) {
	owner := uuid.New()
	boom := errors.New("connection reset")
	repo := new(MockTaskRepository)
	repo.On("Stats", mock.Anything, owner).Return(model.TaskStats{}, boom)
	repo.On("Create", mock.Anything, mock.Anything).Return(boom)

	svc := newTestTaskService(repo)

	_, err := svc.Stats(context.Background(), owner)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Create(context.Background(), owner, TaskInput{Title: "T1"})
	assert.ErrorIs(t, err, boom)
}

// memStatsCache is an in-memory StatsCache.
type memStatsCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	versions map[string]int64
}

func newMemStatsCache() *memStatsCache {
	return &memStatsCache{entries: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *memStatsCache) GetJSON(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	return ok && json.Unmarshal(data, dest) == nil
}

func (c *memStatsCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, _ := json.Marshal(value)
	c.entries[key] = data
}

func (c *memStatsCache) Version(_ context.Context, key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key]
}

func (c *memStatsCache) Bump(_ context.Context, key string, _ time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	return true
}

func TestTaskService_StatsServedFromCacheUntilWrite(t *testing.T) {
	owner := uuid.New()
	repo := new(MockTaskRepository)
	first := model.TaskStats{Total: 1, Pending: 1}
	second := model.TaskStats{Total: 2, Pending: 2}
	repo.On("Stats", mock.Anything, owner).Return(first, nil).Once()
	repo.On("Stats", mock.Anything, owner).Return(second, nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewTaskService(repo, newMemStatsCache(), func() time.Time { return fixedNow })
	ctx := context.Background()

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first, stats)

	stats, err = svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first, stats, "second read is a cache hit")

	_, err = svc.Create(ctx, owner, TaskInput{Title: "T2"})
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, second, stats)
	repo.AssertNumberOfCalls(t, "Stats", 2)
}

func TestTaskService_StatsWriteDuringComputeIsNotCached(t *testing.T) {
	owner := uuid.New()
	taskID := uuid.New()
	repo := new(MockTaskRepository)
	stale := model.TaskStats{Total: 1, Completed: 1}
	fresh := model.TaskStats{}

	svc := NewTaskService(repo, newMemStatsCache(), func() time.Time { return fixedNow })
	ctx := context.Background()

	repo.On("DeleteOwned", mock.Anything, owner, taskID).Return(nil)
	// The delete commits and invalidates after the aggregate was read but
	// before it is written to the cache.
	repo.On("Stats", mock.Anything, owner).Return(stale, nil).Once().Run(func(mock.Arguments) {
		require.NoError(t, svc.Delete(ctx, owner, taskID))
	})
	repo.On("Stats", mock.Anything, owner).Return(fresh, nil).Once()

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, stale, stats)

	stats, err = svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, fresh, stats)
	repo.AssertNumberOfCalls(t, "Stats", 2)
}

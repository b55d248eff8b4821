package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskapi/internal/model"
	"taskapi/internal/query"
)

// TaskRepository defines task persistence operations. Every read and write
// besides Create is scoped to an owner; a task owned by someone else is
// reported exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindOwned(ctx context.Context, owner, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, q query.TaskQuery) ([]model.Task, int64, error)
	UpdateOwned(ctx context.Context, owner, id uuid.UUID, mutate func(task *model.Task) error) (*model.Task, error)
	DeleteOwned(ctx context.Context, owner, id uuid.UUID) error
	DeleteCompleted(ctx context.Context, owner uuid.UUID) (int64, error)
	Stats(ctx context.Context, owner uuid.UUID) (model.TaskStats, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindOwned finds a task by ID among the owner's tasks.
func (r *taskRepository) FindOwned(ctx context.Context, owner, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&task).Error; err != nil {
		return nil, notFoundOr(err, "find task")
	}
	return &task, nil
}

// List returns one page of matching tasks plus the total match count.
// Both statements use the same predicate.
func (r *taskRepository) List(ctx context.Context, q query.TaskQuery) ([]model.Task, int64, error) {
	where, args, err := q.Predicate().ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build task filter: %w", err)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where(where, args...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	tx := r.db.WithContext(ctx).Where(where, args...)
	for _, order := range q.OrderBy() {
		tx = tx.Order(order)
	}

	var tasks []model.Task
	if err := tx.Offset(q.Offset()).Limit(q.Limit).Find(&tasks).Error; err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateOwned locks the owner's task, applies mutate and saves the result,
// returning the post-update task. A mutate error aborts without writing.
func (r *taskRepository) UpdateOwned(ctx context.Context, owner, id uuid.UUID, mutate func(task *model.Task) error) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, owner).
			First(&task).Error; err != nil {
			return err
		}
		if err := mutate(&task); err != nil {
			return err
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "update task")
	}
	return &task, nil
}

// DeleteOwned deletes one of the owner's tasks.
func (r *taskRepository) DeleteOwned(ctx context.Context, owner, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "delete task")
	}
	return nil
}

// DeleteCompleted deletes every completed task of the owner.
func (r *taskRepository) DeleteCompleted(ctx context.Context, owner uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", owner, model.TaskStatusCompleted).
		Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete completed tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Stats aggregates the owner's tasks in a single statement.
func (r *taskRepository) Stats(ctx context.Context, owner uuid.UUID) (model.TaskStats, error) {
	var stats model.TaskStats
	sql, args, err := query.StatsQuery(owner).ToSql()
	if err != nil {
		return stats, fmt.Errorf("build stats query: %w", err)
	}
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&stats).Error; err != nil {
		return stats, fmt.Errorf("task stats: %w", err)
	}
	return stats, nil
}

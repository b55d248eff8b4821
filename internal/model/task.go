package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority represents task urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a personal to-do item owned by exactly one user.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string       `json:"title" gorm:"size:200;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_tasks_user_status,priority:2"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);not null;default:'medium';index:idx_tasks_user_priority,priority:2"`
	DueDate     *time.Time   `json:"dueDate"`
	UserID      uuid.UUID    `json:"userId" gorm:"type:char(36);not null;index:idx_tasks_user_status,priority:1;index:idx_tasks_user_priority,priority:1;index:idx_tasks_user_created,priority:1"`
	CompletedAt *time.Time   `json:"completedAt"`
	Tags        []string     `json:"tags" gorm:"serializer:json;type:json"`
	CreatedAt   time.Time    `json:"createdAt" gorm:"index:idx_tasks_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SetStatus is the only way status should change: completed_at is set on
// entering completed, kept while it stays completed, and cleared on leaving it.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	switch {
	case status == TaskStatusCompleted && (t.Status != TaskStatusCompleted || t.CompletedAt == nil):
		completedAt := now
		t.CompletedAt = &completedAt
	case status != TaskStatusCompleted:
		t.CompletedAt = nil
	}
	t.Status = status
}

// IsOverdue reports whether the due date has passed on an unfinished task.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	return now.After(*t.DueDate)
}

// MarshalJSON adds the derived isOverdue flag.
func (t Task) MarshalJSON() ([]byte, error) {
	type task Task
	return json.Marshal(struct {
		task
		IsOverdue bool `json:"isOverdue"`
	}{task(t), t.IsOverdue(time.Now())})
}

// TaskStats holds per-owner aggregate counts.
type TaskStats struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	InProgress   int64 `json:"inProgress"`
	Completed    int64 `json:"completed"`
	HighPriority int64 `json:"highPriority"`
}

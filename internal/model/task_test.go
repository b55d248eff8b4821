package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_SetStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name          string
		from          TaskStatus
		completedAt   *time.Time
		to            TaskStatus
		wantCompleted *time.Time
	}{
		{"pending to completed", TaskStatusPending, nil, TaskStatusCompleted, &now},
		{"in-progress to completed", TaskStatusInProgress, nil, TaskStatusCompleted, &now},
		{"completed to pending clears", TaskStatusCompleted, &earlier, TaskStatusPending, nil},
		{"completed to in-progress clears", TaskStatusCompleted, &earlier, TaskStatusInProgress, nil},
		{"completed stays completed keeps timestamp", TaskStatusCompleted, &earlier, TaskStatusCompleted, &earlier},
		{"completed without timestamp is repaired", TaskStatusCompleted, nil, TaskStatusCompleted, &now},
		{"pending to in-progress", TaskStatusPending, nil, TaskStatusInProgress, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Status: tt.from, CompletedAt: tt.completedAt}
			task.SetStatus(tt.to, now)

			assert.Equal(t, tt.to, task.Status)
			if tt.wantCompleted == nil {
				assert.Nil(t, task.CompletedAt)
			} else {
				require.NotNil(t, task.CompletedAt)
				assert.True(t, tt.wantCompleted.Equal(*task.CompletedAt))
			}
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	assert.False(t, (&Task{Status: TaskStatusPending}).IsOverdue(now))
	assert.True(t, (&Task{Status: TaskStatusPending, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusPending, DueDate: &future}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusCompleted, DueDate: &past}).IsOverdue(now))
}

func TestTask_MarshalJSON(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	task := Task{Title: "T1", Status: TaskStatusPending, Priority: TaskPriorityHigh, DueDate: &past}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "T1", out["title"])
	assert.Equal(t, "high", out["priority"])
	assert.Equal(t, true, out["isOverdue"])
}

func TestEnums(t *testing.T) {
	assert.True(t, TaskStatusInProgress.Valid())
	assert.False(t, TaskStatus("done").Valid())
	assert.True(t, TaskPriorityLow.Valid())
	assert.False(t, TaskPriority("urgent").Valid())
}

func TestUser_ChangedPasswordAfter(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	changed := issued.Add(time.Minute)

	assert.False(t, (&User{}).ChangedPasswordAfter(issued))
	assert.True(t, (&User{PasswordChangedAt: &changed}).ChangedPasswordAfter(issued))
	assert.False(t, (&User{PasswordChangedAt: &issued}).ChangedPasswordAfter(changed))
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/model"
)

func TestSampleTasks(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	inputs := sampleTasks(9, now)
	require.Len(t, inputs, 9)

	counts := map[model.TaskStatus]int{}
	priorities := map[model.TaskPriority]int{}
	for _, in := range inputs {
		counts[in.Status]++
		priorities[in.Priority]++
		assert.True(t, in.Status.Valid())
		assert.True(t, in.Priority.Valid())
		assert.NotEmpty(t, in.Title)
	}
	assert.Equal(t, 3, counts[model.TaskStatusCompleted])
	assert.Equal(t, 3, priorities[model.TaskPriorityHigh])

	require.NotNil(t, inputs[0].DueDate)
	assert.True(t, inputs[0].DueDate.After(now.Truncate(24*time.Hour)))
	require.NotNil(t, inputs[3].DueDate)
	assert.True(t, inputs[3].DueDate.Before(now))
	assert.Nil(t, inputs[1].DueDate)
}

func TestSampleTasks_Zero(t *testing.T) {
	assert.Empty(t, sampleTasks(0, time.Now()))
}

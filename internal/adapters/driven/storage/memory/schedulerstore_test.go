package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

func TestSchedulerStore_ImplementsInterface(t *testing.T) {
	var _ driven.SchedulerStore = (*SchedulerStore)(nil)
}

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	task := &domain.ScheduledTask{
		ID:       domain.TaskIDIngestRescan,
		Name:     "Ingest Rescan",
		Interval: 30 * time.Minute,
		Enabled:  true,
	}
	require.NoError(t, store.SaveTask(ctx, task))

	retrieved, err := store.GetTask(ctx, domain.TaskIDIngestRescan)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, task.Name, retrieved.Name)
	assert.Equal(t, task.Interval, retrieved.Interval)
}

func TestSchedulerStore_GetTask_Missing(t *testing.T) {
	store := NewSchedulerStore()

	task, err := store.GetTask(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Invalid(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveTask(ctx, &domain.ScheduledTask{}), domain.ErrInvalidInput)
}

func TestSchedulerStore_ListAndDelete(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "a", Name: "A"}))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "b", Name: "B"}))

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	require.NoError(t, store.DeleteTask(ctx, "a"))

	tasks, err = store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSchedulerStore_RecordResultAndHistory(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
			TaskID:         "task-1",
			StartedAt:      now.Add(time.Duration(i) * time.Minute),
			EndedAt:        now.Add(time.Duration(i)*time.Minute + 10*time.Second),
			Success:        true,
			ItemsProcessed: i,
		}))
	}

	// Most recent first, limit respected
	history, err := store.GetTaskHistory(ctx, "task-1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.Equal(t, 2, history[2].ItemsProcessed)
}

func TestSchedulerStore_RecordResult_Invalid(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.RecordResult(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.RecordResult(ctx, &domain.TaskResult{}), domain.ErrInvalidInput)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store := NewSchedulerStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, taskID := range []string{"task-1", "task-2"} {
		for i := 0; i < 5; i++ {
			require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
				TaskID:         taskID,
				StartedAt:      now.Add(time.Duration(i) * time.Minute),
				Success:        true,
				ItemsProcessed: i,
			}))
		}
	}

	require.NoError(t, store.PruneHistory(ctx, 2))

	// Retention applies per task, keeping the most recent results
	for _, taskID := range []string{"task-1", "task-2"} {
		history, err := store.GetTaskHistory(ctx, taskID, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, 4, history[0].ItemsProcessed)
		assert.Equal(t, 3, history[1].ItemsProcessed)
	}
}

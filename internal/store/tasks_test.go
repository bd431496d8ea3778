package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetTask(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	due := time.Date(2026, 3, 1, 17, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	created, err := db.CreateTask(ctx, &Task{Description: "remind me kal 5 baje", TimeExpr: "5 baje", DueAt: &due, Language: "hi"})
	require.NoError(t, err)
	assert.Equal(t, TaskPending, created.Status)

	got, err := db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "remind me kal 5 baje", got.Description)
	assert.Equal(t, "hi", got.Language)
	require.NotNil(t, got.DueAt)
	assert.True(t, due.Equal(*got.DueAt))
	assert.Nil(t, got.FiredAt)

	_, err = db.GetTask(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTask_Validation(t *testing.T) {
	db := NewTestDB(t)
	_, err := db.CreateTask(context.Background(), &Task{Description: " "})
	assert.Error(t, err)

	task, err := db.CreateTask(context.Background(), &Task{Description: "call papa"})
	require.NoError(t, err)
	assert.Equal(t, "en", task.Language)
	assert.Nil(t, task.DueAt)
}

func TestListDueTasks(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Hour)
	earlier := now.Add(-2 * time.Hour)
	future := now.Add(time.Hour)

	pastTask, err := db.CreateTask(ctx, &Task{Description: "past", DueAt: &past})
	require.NoError(t, err)
	earlierTask, err := db.CreateTask(ctx, &Task{Description: "earlier", DueAt: &earlier})
	require.NoError(t, err)
	_, err = db.CreateTask(ctx, &Task{Description: "future", DueAt: &future})
	require.NoError(t, err)
	_, err = db.CreateTask(ctx, &Task{Description: "unresolved"})
	require.NoError(t, err)

	due, err := db.ListDueTasks(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, earlierTask.ID, due[0].ID)
	assert.Equal(t, pastTask.ID, due[1].ID)

	require.NoError(t, db.MarkTaskFired(ctx, pastTask.ID))
	due, err = db.ListDueTasks(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, earlierTask.ID, due[0].ID)
}

func TestMarkTaskFired_Once(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	task, err := db.CreateTask(ctx, &Task{Description: "once"})
	require.NoError(t, err)

	require.NoError(t, db.MarkTaskFired(ctx, task.ID))
	assert.ErrorIs(t, db.MarkTaskFired(ctx, task.ID), ErrNotFound)

	got, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskFired, got.Status)
	assert.NotNil(t, got.FiredAt)
}

func TestListTasks(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	db.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	a, err := db.CreateTask(ctx, &Task{Description: "a"})
	require.NoError(t, err)
	b, err := db.CreateTask(ctx, &Task{Description: "b"})
	require.NoError(t, err)
	require.NoError(t, db.MarkTaskFired(ctx, a.ID))

	all, err := db.ListTasks(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)

	pending, err := db.ListTasks(ctx, TaskPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
}

package sqlite

import (
	"context"
	"errors"
	"testing"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/timer"
)

func newTestDB(t *testing.T) txStdLib.DBGetter {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db))
	// migrations are idempotent
	require.NoError(t, RunMigrations(db))

	_, dbGetter := txStdLib.NewTransactor(db, txStdLib.NestedTransactionsSavepoints)
	return dbGetter
}

func TestGenerateParameters(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "()", generateParameters(0))
	assert.Equal(t, "(?)", generateParameters(1))
	assert.Equal(t, "(?, ?, ?)", generateParameters(3))
}

func TestTaskRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewTaskRepo(newTestDB(t), *log.Default())

	_, err := repo.InsertTask(ctx, pomotodo.TaskRecord{OwnerID: "u1"})
	assert.Error(t, err)

	write, err := repo.InsertTask(ctx, pomotodo.TaskRecord{OwnerID: "u1", Title: "write report"})
	require.NoError(t, err)
	require.NotEmpty(t, write.ID)
	review, err := repo.InsertTask(ctx, pomotodo.TaskRecord{OwnerID: "u1", Title: "review PR"})
	require.NoError(t, err)
	_, err = repo.InsertTask(ctx, pomotodo.TaskRecord{OwnerID: "u2", Title: "other"})
	require.NoError(t, err)

	got, err := repo.GetTask(ctx, write.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, pomotodo.OwnerID("u1"), got.OwnerID)
	assert.False(t, got.Completed())
	assert.Equal(t, write.CreatedAt.Unix(), got.CreatedAt.Unix())

	t.Run("focused time accumulates", func(t *testing.T) {
		require.NoError(t, repo.AddFocusedTime(ctx, write.ID, 45))
		require.NoError(t, repo.AddFocusedTime(ctx, write.ID, 1500))
		got, err := repo.GetTask(ctx, write.ID)
		require.NoError(t, err)
		assert.Equal(t, 1545, got.FocusedSeconds)

		assert.Error(t, repo.AddFocusedTime(ctx, write.ID, -1))
		assert.ErrorIs(t, repo.AddFocusedTime(ctx, "missing", 1), ErrNotFound)
	})

	t.Run("complete hides task from open list", func(t *testing.T) {
		completed, err := repo.MarkComplete(ctx, review.ID)
		require.NoError(t, err)
		assert.True(t, completed.Completed())

		again, err := repo.MarkComplete(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, completed.CompletedAt.Unix(), again.CompletedAt.Unix())

		open, err := repo.GetTasksByOwner(ctx, "u1", false)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, write.ID, open[0].ID)

		all, err := repo.GetTasksByOwner(ctx, "u1", true)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.DeleteTask(ctx, write.ID)
		require.NoError(t, err)
		assert.Equal(t, write.ID, deleted.ID)

		_, err = repo.GetTask(ctx, write.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		_, err = repo.DeleteTask(ctx, write.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSettingsRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewSettingsRepo(newTestDB(t), *log.Default())

	_, err := repo.GetSettings(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpsertSettings(ctx, pomotodo.SettingsRecord{OwnerID: "u1"})
	assert.ErrorIs(t, err, pomotodo.ErrInvalidSettings)

	first, err := repo.UpsertSettings(ctx, pomotodo.SettingsRecord{OwnerID: "u1", Settings: timer.DefaultSettings})
	require.NoError(t, err)

	changed := timer.DefaultSettings
	changed.WorkMinutes = 50
	second, err := repo.UpsertSettings(ctx, pomotodo.SettingsRecord{OwnerID: "u1", Settings: changed})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	got, err := repo.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, changed, got.Settings)
	assert.Equal(t, pomotodo.OwnerID("u1"), got.OwnerID)
}

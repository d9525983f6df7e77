package main

import (
	"context"
	"errors"
	"testing"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newTask := func() pomotodo.ExistingTaskRecord {
		return pomotodo.ExistingTaskRecord{
			ExistingRecord: pomotodo.NewExistingRecord[pomotodo.TaskID]("t1"),
			TaskRecord:     pomotodo.TaskRecord{OwnerID: testOwner, Title: "write report"},
		}
	}

	tests := []struct {
		name         string
		txErr        error
		wantErr      error
		wantSelected string
	}{
		{
			name:         "deselects after delete",
			wantSelected: "",
		},
		{
			name:         "failed delete keeps selection",
			txErr:        errors.New("begin failed"),
			wantErr:      errors.New("begin failed"),
			wantSelected: "t1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := newMockTaskRepo(newTask())
			tx := &mockTransactor{}
			if tt.txErr != nil {
				tx.withinTransactionFunc = func(ctx context.Context, fn func(context.Context) error) error {
					return tt.txErr
				}
			}
			m := newTestSessionManager(t, repo, &mockSettingsService{settings: timer.DefaultSettings}, newRecordingStore())
			startTestSession(t, m)
			_, err := m.SelectTask(ctx, testOwner, "t1")
			require.NoError(t, err)

			deleted, err := deleteTask(ctx, m, NewTaskService(repo, tx), testOwner, "t1")
			if tt.wantErr != nil {
				require.EqualError(t, err, tt.wantErr.Error())
				_, getErr := repo.GetTask(ctx, "t1")
				assert.NoError(t, getErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, pomotodo.TaskID("t1"), deleted.ID)
			}

			session, err := m.GetSession(testOwner)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, session.Timer.TaskID)
			if tt.wantSelected == "" {
				assert.Empty(t, session.TaskTitle)
			} else {
				assert.Equal(t, "write report", session.TaskTitle)
			}
		})
	}
}

func TestDeleteTask_OtherOwnerKeepsSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMockTaskRepo(pomotodo.ExistingTaskRecord{
		ExistingRecord: pomotodo.NewExistingRecord[pomotodo.TaskID]("t1"),
		TaskRecord:     pomotodo.TaskRecord{OwnerID: testOwner, Title: "write report"},
	})
	m := newTestSessionManager(t, repo, &mockSettingsService{settings: timer.DefaultSettings}, newRecordingStore())
	startTestSession(t, m)
	_, err := m.SelectTask(ctx, testOwner, "t1")
	require.NoError(t, err)

	_, err = deleteTask(ctx, m, NewTaskService(repo, &mockTransactor{}), "someone-else", "t1")
	require.ErrorIs(t, err, ErrTaskNotFound)

	session, err := m.GetSession(testOwner)
	require.NoError(t, err)
	assert.Equal(t, "t1", session.Timer.TaskID)
}

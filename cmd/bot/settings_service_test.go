package main

import (
	"context"
	"errors"
	"testing"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/sqlite"
	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSettingsRepo is a mock implementation of pomotodo.SettingsRepo
type mockSettingsRepo struct {
	records   map[pomotodo.OwnerID]pomotodo.SettingsRecord
	getErr    error
	getCalls  int
	upsertErr error
}

func (m *mockSettingsRepo) UpsertSettings(ctx context.Context, r pomotodo.SettingsRecord) (pomotodo.ExistingSettingsRecord, error) {
	if m.upsertErr != nil {
		return pomotodo.ExistingSettingsRecord{}, m.upsertErr
	}
	m.records[r.OwnerID] = r
	return pomotodo.ExistingSettingsRecord{
		ExistingRecord: pomotodo.NewExistingRecord[pomotodo.OwnerID](string(r.OwnerID)),
		SettingsRecord: r,
	}, nil
}

func (m *mockSettingsRepo) GetSettings(ctx context.Context, owner pomotodo.OwnerID) (pomotodo.ExistingSettingsRecord, error) {
	m.getCalls++
	if m.getErr != nil {
		return pomotodo.ExistingSettingsRecord{}, m.getErr
	}
	r, ok := m.records[owner]
	if !ok {
		return pomotodo.ExistingSettingsRecord{}, sqlite.ErrNotFound
	}
	return pomotodo.ExistingSettingsRecord{
		ExistingRecord: pomotodo.NewExistingRecord[pomotodo.OwnerID](string(owner)),
		SettingsRecord: r,
	}, nil
}

func TestSettingsService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := *log.Default()

	t.Run("defaults when unsaved", func(t *testing.T) {
		t.Parallel()
		svc := NewSettingsService(&mockSettingsRepo{records: map[pomotodo.OwnerID]pomotodo.SettingsRecord{}}, timer.DefaultSettings, logger)

		settings, err := svc.Get(ctx, testOwner)
		require.NoError(t, err)
		assert.Equal(t, timer.DefaultSettings, settings)
	})

	t.Run("repo error returns defaults with error", func(t *testing.T) {
		t.Parallel()
		svc := NewSettingsService(&mockSettingsRepo{getErr: errors.New("boom")}, timer.DefaultSettings, logger)

		settings, err := svc.Get(ctx, testOwner)
		require.Error(t, err)
		assert.Equal(t, timer.DefaultSettings, settings)
	})

	t.Run("update saves and caches", func(t *testing.T) {
		t.Parallel()
		repo := &mockSettingsRepo{records: map[pomotodo.OwnerID]pomotodo.SettingsRecord{}}
		svc := NewSettingsService(repo, timer.DefaultSettings, logger)

		settings, err := svc.Update(ctx, testOwner, map[string]any{
			pomotodo.WorkOption:   float64(50),
			pomotodo.CyclesOption: float64(2),
		})
		require.NoError(t, err)
		want := timer.DefaultSettings
		want.WorkMinutes = 50
		want.CyclesBeforeLongBreak = 2
		assert.Equal(t, want, settings)
		assert.Equal(t, want, repo.records[testOwner].Settings)

		calls := repo.getCalls
		got, err := svc.Get(ctx, testOwner)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, calls, repo.getCalls, "expected cached read")
	})

	t.Run("invalid update is rejected", func(t *testing.T) {
		t.Parallel()
		repo := &mockSettingsRepo{records: map[pomotodo.OwnerID]pomotodo.SettingsRecord{}}
		svc := NewSettingsService(repo, timer.DefaultSettings, logger)

		_, err := svc.Update(ctx, testOwner, map[string]any{pomotodo.WorkOption: float64(0)})
		assert.ErrorIs(t, err, pomotodo.ErrInvalidSettings)
		assert.Empty(t, repo.records)
	})

	t.Run("save error", func(t *testing.T) {
		t.Parallel()
		repo := &mockSettingsRepo{records: map[pomotodo.OwnerID]pomotodo.SettingsRecord{}, upsertErr: errors.New("disk full")}
		svc := NewSettingsService(repo, timer.DefaultSettings, logger)

		_, err := svc.Update(ctx, testOwner, map[string]any{pomotodo.WorkOption: float64(30)})
		require.Error(t, err)
		settings, err := svc.Get(ctx, testOwner)
		require.NoError(t, err)
		assert.Equal(t, timer.DefaultSettings, settings)
	})
}

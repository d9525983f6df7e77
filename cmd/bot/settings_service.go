package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/sqlite"
	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/charmbracelet/log"
)

type SettingsService interface {
	// Get returns the user's saved settings or the defaults.
	Get(context.Context, pomotodo.OwnerID) (timer.Settings, error)
	// Update merges raw option values into the user's settings and saves them.
	Update(ctx context.Context, owner pomotodo.OwnerID, raw map[string]any) (timer.Settings, error)
}

type settingsService struct {
	repo     pomotodo.SettingsRepo
	defaults timer.Settings
	l        log.Logger

	mu    sync.RWMutex
	cache map[pomotodo.OwnerID]timer.Settings
}

func NewSettingsService(repo pomotodo.SettingsRepo, defaults timer.Settings, logger log.Logger) *settingsService {
	return &settingsService{
		repo:     repo,
		defaults: defaults,
		l:        logger,
		cache:    make(map[pomotodo.OwnerID]timer.Settings),
	}
}

func (s *settingsService) Get(ctx context.Context, owner pomotodo.OwnerID) (timer.Settings, error) {
	s.mu.RLock()
	settings, ok := s.cache[owner]
	s.mu.RUnlock()
	if ok {
		return settings, nil
	}

	record, err := s.repo.GetSettings(ctx, owner)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return s.defaults, nil
		}
		return s.defaults, fmt.Errorf("get settings: %w", err)
	}

	s.mu.Lock()
	s.cache[owner] = record.Settings
	s.mu.Unlock()
	return record.Settings, nil
}

func (s *settingsService) Update(ctx context.Context, owner pomotodo.OwnerID, raw map[string]any) (timer.Settings, error) {
	base, err := s.Get(ctx, owner)
	if err != nil {
		return timer.Settings{}, err
	}
	settings, err := pomotodo.ApplySettings(base, raw)
	if err != nil {
		return timer.Settings{}, err
	}
	if settings == base {
		return settings, nil
	}

	if _, err := s.repo.UpsertSettings(ctx, pomotodo.SettingsRecord{
		OwnerID:  owner,
		Settings: settings,
	}); err != nil {
		return timer.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	s.l.Debug("updated settings", "userID", owner, "settings", settings)

	s.mu.Lock()
	s.cache[owner] = settings
	s.mu.Unlock()
	return settings, nil
}

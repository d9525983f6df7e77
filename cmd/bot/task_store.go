package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/sqlite"
	"github.com/charmbracelet/log"
)

var storeTimeout = 10 * time.Second

// taskStore persists engine task updates in the background. Errors are logged
// and never reach the engine.
type taskStore struct {
	repo    pomotodo.TaskRepo
	ctx     context.Context
	timeout time.Duration
	l       log.Logger
	wg      sync.WaitGroup
}

func NewTaskStore(ctx context.Context, repo pomotodo.TaskRepo, logger log.Logger) *taskStore {
	return &taskStore{
		repo:    repo,
		ctx:     context.WithoutCancel(ctx),
		timeout: storeTimeout,
		l:       logger,
	}
}

func (s *taskStore) AccumulateTime(taskID string, seconds int) {
	if taskID == "" || seconds <= 0 {
		return
	}
	s.wg.Go(func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		err := s.repo.AddFocusedTime(ctx, pomotodo.TaskID(taskID), seconds)
		if errors.Is(err, sqlite.ErrNotFound) {
			s.l.Debug("dropped focused time for deleted task", "taskID", taskID, "seconds", seconds)
			return
		}
		if err != nil {
			s.l.Error("failed to add focused time", "taskID", taskID, "seconds", seconds, "err", err)
			return
		}
		s.l.Debug("added focused time", "taskID", taskID, "seconds", seconds)
	})
}

func (s *taskStore) MarkComplete(taskID string) {
	if taskID == "" {
		return
	}
	s.wg.Go(func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		if _, err := s.repo.MarkComplete(ctx, pomotodo.TaskID(taskID)); err != nil {
			s.l.Error("failed to mark task complete", "taskID", taskID, "err", err)
		}
	})
}

// Wait blocks until every pending write has finished.
func (s *taskStore) Wait() {
	s.wg.Wait()
}

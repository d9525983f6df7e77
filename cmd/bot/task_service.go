package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Thiht/transactor"
	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/sqlite"
)

// TaskService is the todo list as seen by a single owner.
type TaskService interface {
	Add(ctx context.Context, owner pomotodo.OwnerID, title string) (pomotodo.ExistingTaskRecord, error)
	List(ctx context.Context, owner pomotodo.OwnerID) ([]pomotodo.ExistingTaskRecord, error)
	Delete(ctx context.Context, owner pomotodo.OwnerID, id pomotodo.TaskID) (pomotodo.ExistingTaskRecord, error)
}

type taskService struct {
	repo pomotodo.TaskRepo
	tx   transactor.Transactor
}

func NewTaskService(repo pomotodo.TaskRepo, tx transactor.Transactor) *taskService {
	return &taskService{
		repo: repo,
		tx:   tx,
	}
}

func (s *taskService) Add(ctx context.Context, owner pomotodo.OwnerID, title string) (pomotodo.ExistingTaskRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return pomotodo.ExistingTaskRecord{}, fmt.Errorf("task title is required")
	}
	return s.repo.InsertTask(ctx, pomotodo.TaskRecord{
		OwnerID: owner,
		Title:   title,
	})
}

func (s *taskService) List(ctx context.Context, owner pomotodo.OwnerID) ([]pomotodo.ExistingTaskRecord, error) {
	return s.repo.GetTasksByOwner(ctx, owner, false)
}

func (s *taskService) Delete(ctx context.Context, owner pomotodo.OwnerID, id pomotodo.TaskID) (pomotodo.ExistingTaskRecord, error) {
	var deleted pomotodo.ExistingTaskRecord
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := s.repo.GetTask(ctx, id)
		if err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
			}
			return err
		}
		if task.OwnerID != owner {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		deleted, err = s.repo.DeleteTask(ctx, id)
		return err
	})
	if err != nil {
		return pomotodo.ExistingTaskRecord{}, err
	}
	return deleted, nil
}

package pomotodo

import (
	"context"
	"time"

	"github.com/benjamonnguyen/pomotodo/timer"
)

type (
	TaskID  string
	OwnerID string
)

// ExistingRecord carries the columns every stored row has.
type ExistingRecord[T ~string] struct {
	ID        T
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewExistingRecord stamps a new row created now.
func NewExistingRecord[T ~string](id string) ExistingRecord[T] {
	now := time.Now()
	return ExistingRecord[T]{
		ID:        T(id),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type TaskRecord struct {
	OwnerID OwnerID
	Title   string

	//
	FocusedSeconds int
	CompletedAt    time.Time
}

func (r TaskRecord) Completed() bool {
	return !r.CompletedAt.IsZero()
}

func (r TaskRecord) Focused() time.Duration {
	return time.Duration(r.FocusedSeconds) * time.Second
}

type ExistingTaskRecord struct {
	ExistingRecord[TaskID]
	TaskRecord
}

type SettingsRecord struct {
	OwnerID OwnerID
	timer.Settings
}

type ExistingSettingsRecord struct {
	ExistingRecord[OwnerID]
	SettingsRecord
}

type TaskRepo interface {
	InsertTask(context.Context, TaskRecord) (ExistingTaskRecord, error)
	GetTask(context.Context, TaskID) (ExistingTaskRecord, error)
	GetTasksByOwner(ctx context.Context, owner OwnerID, includeCompleted bool) ([]ExistingTaskRecord, error)
	DeleteTask(context.Context, TaskID) (ExistingTaskRecord, error)

	// AddFocusedTime increments the task's focused seconds.
	AddFocusedTime(ctx context.Context, id TaskID, seconds int) error
	// MarkComplete sets CompletedAt if the task is not already complete.
	MarkComplete(context.Context, TaskID) (ExistingTaskRecord, error)
}

type SettingsRepo interface {
	UpsertSettings(context.Context, SettingsRecord) (ExistingSettingsRecord, error)
	GetSettings(context.Context, OwnerID) (ExistingSettingsRecord, error)
}

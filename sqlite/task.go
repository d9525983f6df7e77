package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/benjamonnguyen/pomotodo"
)

const (
	SelectAllTasks = "SELECT id, owner_id, title, focused_seconds, completed_at, created_at, updated_at FROM tasks"
)

type taskEntity struct {
	ID             string
	OwnerID        string
	Title          string
	FocusedSeconds int
	CompletedAt    int64
	CreatedAt      int64
	UpdatedAt      int64
}

type taskRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewTaskRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *taskRepo {
	return &taskRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *taskRepo) InsertTask(ctx context.Context, task pomotodo.TaskRecord) (pomotodo.ExistingTaskRecord, error) {
	if task.OwnerID == "" || task.Title == "" {
		return pomotodo.ExistingTaskRecord{}, fmt.Errorf("provide required fields 'OwnerID' and 'Title'")
	}
	if task.FocusedSeconds < 0 {
		return pomotodo.ExistingTaskRecord{}, fmt.Errorf("negative FocusedSeconds: %d", task.FocusedSeconds)
	}

	db := r.dbGetter(ctx)
	existingRecord := pomotodo.ExistingTaskRecord{
		TaskRecord:     task,
		ExistingRecord: pomotodo.NewExistingRecord[pomotodo.TaskID](uuid.NewString()),
	}
	e := mapToTaskEntity(existingRecord)

	args := []any{
		e.ID,
		e.OwnerID,
		e.Title,
		e.FocusedSeconds,
		e.CompletedAt,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO tasks (id, owner_id, title, focused_seconds, completed_at, created_at, updated_at) VALUES " + generateParameters(len(args))
	r.l.Debug("creating task", "query", query, "args", args)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return pomotodo.ExistingTaskRecord{}, err
	}

	return existingRecord, nil
}

func (r *taskRepo) GetTask(ctx context.Context, id pomotodo.TaskID) (pomotodo.ExistingTaskRecord, error) {
	if id == "" {
		return pomotodo.ExistingTaskRecord{}, fmt.Errorf("provide id")
	}

	db := r.dbGetter(ctx)
	row := db.QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE id=?", SelectAllTasks), id,
	)

	return extractTask(row)
}

func (r *taskRepo) GetTasksByOwner(ctx context.Context, owner pomotodo.OwnerID, includeCompleted bool) ([]pomotodo.ExistingTaskRecord, error) {
	if owner == "" {
		return nil, fmt.Errorf("provide owner")
	}

	query := fmt.Sprintf("%s WHERE owner_id=?", SelectAllTasks)
	if !includeCompleted {
		query += " AND completed_at = 0"
	}
	query += " ORDER BY created_at, id"
	r.l.Debug("getting tasks by owner", "query", query, "owner", owner)
	rows, err := r.dbGetter(ctx).QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var tasks []pomotodo.ExistingTaskRecord
	for rows.Next() {
		task, err := extractTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) DeleteTask(ctx context.Context, id pomotodo.TaskID) (pomotodo.ExistingTaskRecord, error) {
	existing, err := r.GetTask(ctx, id)
	if err != nil {
		return pomotodo.ExistingTaskRecord{}, err
	}

	query := "DELETE FROM tasks WHERE id = ?"
	r.l.Debug("deleting task", "query", query, "id", id)
	if _, err := r.dbGetter(ctx).ExecContext(ctx, query, id); err != nil {
		return pomotodo.ExistingTaskRecord{}, err
	}

	return existing, nil
}

func (r *taskRepo) AddFocusedTime(ctx context.Context, id pomotodo.TaskID, seconds int) error {
	if id == "" {
		return fmt.Errorf("provide id")
	}
	if seconds < 0 {
		return fmt.Errorf("negative seconds: %d", seconds)
	}

	query := "UPDATE tasks SET focused_seconds = focused_seconds + ?, updated_at = ? WHERE id = ?"
	args := []any{seconds, time.Now().Unix(), id}
	r.l.Debug("adding focused time", "query", query, "args", args)
	res, err := r.dbGetter(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepo) MarkComplete(ctx context.Context, id pomotodo.TaskID) (pomotodo.ExistingTaskRecord, error) {
	existing, err := r.GetTask(ctx, id)
	if err != nil {
		return existing, err
	}
	if existing.Completed() {
		return existing, nil
	}

	now := time.Now()
	existing.CompletedAt = now
	existing.UpdatedAt = now
	e := mapToTaskEntity(existing)

	query := "UPDATE tasks SET completed_at = ?, updated_at = ? WHERE id = ?"
	args := []any{e.CompletedAt, e.UpdatedAt, e.ID}
	r.l.Debug("completing task", "query", query, "args", args)
	if _, err := r.dbGetter(ctx).ExecContext(ctx, query, args...); err != nil {
		return pomotodo.ExistingTaskRecord{}, err
	}

	return existing, nil
}

func extractTask(s scannable) (pomotodo.ExistingTaskRecord, error) {
	var e taskEntity
	if err := s.Scan(&e.ID, &e.OwnerID, &e.Title, &e.FocusedSeconds, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomotodo.ExistingTaskRecord{}, ErrNotFound
		}
		return pomotodo.ExistingTaskRecord{}, err
	}

	return mapToExistingTaskRecord(e), nil
}

func mapToTaskEntity(task pomotodo.ExistingTaskRecord) taskEntity {
	var completedAt int64
	if task.Completed() {
		completedAt = task.CompletedAt.Unix()
	}
	return taskEntity{
		ID:             string(task.ID),
		OwnerID:        string(task.OwnerID),
		Title:          task.Title,
		FocusedSeconds: task.FocusedSeconds,
		CompletedAt:    completedAt,
		CreatedAt:      task.CreatedAt.Unix(),
		UpdatedAt:      task.UpdatedAt.Unix(),
	}
}

func mapToExistingTaskRecord(e taskEntity) pomotodo.ExistingTaskRecord {
	var completedAt time.Time
	if e.CompletedAt != 0 {
		completedAt = time.Unix(e.CompletedAt, 0)
	}
	return pomotodo.ExistingTaskRecord{
		ExistingRecord: pomotodo.ExistingRecord[pomotodo.TaskID]{
			ID:        pomotodo.TaskID(e.ID),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		TaskRecord: pomotodo.TaskRecord{
			OwnerID:        pomotodo.OwnerID(e.OwnerID),
			Title:          e.Title,
			FocusedSeconds: e.FocusedSeconds,
			CompletedAt:    completedAt,
		},
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/timer"
)

const (
	SelectAllSettings = "SELECT owner_id, work_minutes, short_break_minutes, long_break_minutes, cycles_before_long_break, created_at, updated_at FROM timer_settings"
)

type settingsEntity struct {
	OwnerID               string
	WorkMinutes           int
	ShortBreakMinutes     int
	LongBreakMinutes      int
	CyclesBeforeLongBreak int
	CreatedAt             int64
	UpdatedAt             int64
}

type settingsRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewSettingsRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *settingsRepo {
	return &settingsRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

// UpsertSettings keeps the original created_at when the owner already has settings.
func (r *settingsRepo) UpsertSettings(ctx context.Context, settings pomotodo.SettingsRecord) (pomotodo.ExistingSettingsRecord, error) {
	if settings.OwnerID == "" {
		return pomotodo.ExistingSettingsRecord{}, fmt.Errorf("provide required field 'OwnerID'")
	}
	if !settings.Ready() {
		return pomotodo.ExistingSettingsRecord{}, fmt.Errorf("%w: %+v", pomotodo.ErrInvalidSettings, settings.Settings)
	}

	existingRecord := pomotodo.ExistingSettingsRecord{
		SettingsRecord: settings,
		ExistingRecord: pomotodo.NewExistingRecord[pomotodo.OwnerID](string(settings.OwnerID)),
	}
	if existing, err := r.GetSettings(ctx, settings.OwnerID); err == nil {
		existingRecord.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, ErrNotFound) {
		return pomotodo.ExistingSettingsRecord{}, err
	}
	e := mapToSettingsEntity(existingRecord)

	args := []any{
		e.OwnerID,
		e.WorkMinutes,
		e.ShortBreakMinutes,
		e.LongBreakMinutes,
		e.CyclesBeforeLongBreak,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO timer_settings (owner_id, work_minutes, short_break_minutes, long_break_minutes, cycles_before_long_break, created_at, updated_at) VALUES " +
		generateParameters(len(args)) +
		" ON CONFLICT(owner_id) DO UPDATE SET work_minutes = excluded.work_minutes, short_break_minutes = excluded.short_break_minutes," +
		" long_break_minutes = excluded.long_break_minutes, cycles_before_long_break = excluded.cycles_before_long_break, updated_at = excluded.updated_at"
	r.l.Debug("upserting timer settings", "query", query, "args", args)
	if _, err := r.dbGetter(ctx).ExecContext(ctx, query, args...); err != nil {
		return pomotodo.ExistingSettingsRecord{}, err
	}

	return existingRecord, nil
}

func (r *settingsRepo) GetSettings(ctx context.Context, owner pomotodo.OwnerID) (pomotodo.ExistingSettingsRecord, error) {
	if owner == "" {
		return pomotodo.ExistingSettingsRecord{}, fmt.Errorf("provide owner")
	}

	row := r.dbGetter(ctx).QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE owner_id=?", SelectAllSettings), owner,
	)

	var e settingsEntity
	if err := row.Scan(&e.OwnerID, &e.WorkMinutes, &e.ShortBreakMinutes, &e.LongBreakMinutes, &e.CyclesBeforeLongBreak, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomotodo.ExistingSettingsRecord{}, ErrNotFound
		}
		return pomotodo.ExistingSettingsRecord{}, err
	}
	return mapToExistingSettingsRecord(e), nil
}

func mapToSettingsEntity(settings pomotodo.ExistingSettingsRecord) settingsEntity {
	return settingsEntity{
		OwnerID:               string(settings.OwnerID),
		WorkMinutes:           settings.WorkMinutes,
		ShortBreakMinutes:     settings.ShortBreakMinutes,
		LongBreakMinutes:      settings.LongBreakMinutes,
		CyclesBeforeLongBreak: settings.CyclesBeforeLongBreak,
		CreatedAt:             settings.CreatedAt.Unix(),
		UpdatedAt:             settings.UpdatedAt.Unix(),
	}
}

func mapToExistingSettingsRecord(e settingsEntity) pomotodo.ExistingSettingsRecord {
	return pomotodo.ExistingSettingsRecord{
		ExistingRecord: pomotodo.ExistingRecord[pomotodo.OwnerID]{
			ID:        pomotodo.OwnerID(e.OwnerID),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		SettingsRecord: pomotodo.SettingsRecord{
			OwnerID: pomotodo.OwnerID(e.OwnerID),
			Settings: timer.Settings{
				WorkMinutes:           e.WorkMinutes,
				ShortBreakMinutes:     e.ShortBreakMinutes,
				LongBreakMinutes:      e.LongBreakMinutes,
				CyclesBeforeLongBreak: e.CyclesBeforeLongBreak,
			},
		},
	}
}

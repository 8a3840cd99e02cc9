package database

import (
	"context"

	"github.com/example/linguabot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const scheduleColumns = `card_id, next_review, ease_factor, interval_days, repetitions`

// ScheduleRepository handles database operations for card schedules
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new repository instance
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func insertSchedule(ctx context.Context, e sqlx.ExtContext, s models.Schedule) error {
	query := e.Rebind(`
		INSERT INTO schedules (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := e.ExecContext(ctx, query, s.CardID, utc(s.NextReview), s.EaseFactor, s.Interval, s.Repetitions)
	return wrapErr("create schedule", err)
}

// GetSchedule returns the schedule of a card
func (r *ScheduleRepository) GetSchedule(ctx context.Context, cardID int64) (models.Schedule, error) {
	var s models.Schedule
	query := r.db.Rebind(`SELECT ` + scheduleColumns + ` FROM schedules WHERE card_id = ?`)
	if err := r.db.GetContext(ctx, &s, query, cardID); err != nil {
		return models.Schedule{}, wrapErr("get schedule", err)
	}
	return s, nil
}

// SaveSchedule overwrites the stored schedule of s.CardID
func (r *ScheduleRepository) SaveSchedule(ctx context.Context, s models.Schedule) error {
	return saveSchedule(ctx, r.db, s)
}

func saveSchedule(ctx context.Context, e sqlx.ExtContext, s models.Schedule) error {
	query := e.Rebind(`
		UPDATE schedules SET
			next_review = ?,
			ease_factor = ?,
			interval_days = ?,
			repetitions = ?
		WHERE card_id = ?
	`)
	result, err := e.ExecContext(ctx, query, utc(s.NextReview), s.EaseFactor, s.Interval, s.Repetitions, s.CardID)
	if err != nil {
		return wrapErr("save schedule", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapErr("save schedule rows affected", err)
	}
	if rows == 0 {
		return wrapErr("save schedule", models.ErrNotFound)
	}
	return nil
}

// UpdateSchedule reads, transforms and writes a card's schedule in one
// transaction so concurrent reviews of the same card cannot lose updates.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, cardID int64, fn func(models.Schedule) (models.Schedule, error)) (models.Schedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Schedule{}, wrapErr("begin update schedule", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE card_id = ?`
	if tx.DriverName() == DriverPostgres {
		query += ` FOR UPDATE`
	}

	var current models.Schedule
	if err := tx.GetContext(ctx, &current, tx.Rebind(query), cardID); err != nil {
		return models.Schedule{}, wrapErr("lock schedule", err)
	}

	next, err := fn(current)
	if err != nil {
		return models.Schedule{}, err
	}
	next.CardID = cardID

	if err := saveSchedule(ctx, tx, next); err != nil {
		return models.Schedule{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Schedule{}, wrapErr("commit update schedule", err)
	}
	return next, nil
}

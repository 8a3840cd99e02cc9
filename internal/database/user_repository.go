package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/linguabot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const statsColumns = `user_id, chat_id, total_cards, learned_cards, review_streak, last_reviewed, reminder_time`

// UserRepository handles database operations for accounts and their stats
type UserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// CreateUser inserts a new account
func (r *UserRepository) CreateUser(ctx context.Context, username string) (models.User, error) {
	user := models.User{Username: username, CreatedAt: utc(r.now())}
	query := r.db.Rebind(`INSERT INTO users (username, created_at) VALUES (?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, user.Username, user.CreatedAt).Scan(&user.ID); err != nil {
		return models.User{}, wrapErr("create user", err)
	}
	return user, nil
}

// GetUser returns an account by ID
func (r *UserRepository) GetUser(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, username, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return models.User{}, wrapErr("get user", err)
	}
	return user, nil
}

// GetUserStats returns the stats bound to an external chat identity
func (r *UserRepository) GetUserStats(ctx context.Context, chatID int64) (models.UserStats, error) {
	var stats models.UserStats
	query := r.db.Rebind(`SELECT ` + statsColumns + ` FROM user_stats WHERE chat_id = ?`)
	if err := r.db.GetContext(ctx, &stats, query, chatID); err != nil {
		return models.UserStats{}, wrapErr("get user stats", err)
	}
	return stats, nil
}

// GetUserStatsByUser returns the stats of an account
func (r *UserRepository) GetUserStatsByUser(ctx context.Context, userID int64) (models.UserStats, error) {
	var stats models.UserStats
	query := r.db.Rebind(`SELECT ` + statsColumns + ` FROM user_stats WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return models.UserStats{}, wrapErr("get user stats", err)
	}
	return stats, nil
}

// BindUserStats binds chatID to the account's stats, creating the stats row
// when missing. A chat bound to another account is released first; stats are
// never deleted by rebinding.
func (r *UserRepository) BindUserStats(ctx context.Context, userID, chatID int64) (models.UserStats, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.UserStats{}, wrapErr("begin bind user stats", err)
	}
	defer tx.Rollback()

	release := tx.Rebind(`UPDATE user_stats SET chat_id = NULL WHERE chat_id = ? AND user_id <> ?`)
	if _, err := tx.ExecContext(ctx, release, chatID, userID); err != nil {
		return models.UserStats{}, wrapErr("release chat binding", err)
	}

	upsert := tx.Rebind(`
		INSERT INTO user_stats (user_id, chat_id, reminder_time)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET chat_id = excluded.chat_id
	`)
	if _, err := tx.ExecContext(ctx, upsert, userID, chatID, models.DefaultReminderTime.String()); err != nil {
		return models.UserStats{}, wrapErr("bind user stats", err)
	}

	var stats models.UserStats
	query := tx.Rebind(`SELECT ` + statsColumns + ` FROM user_stats WHERE user_id = ?`)
	if err := tx.GetContext(ctx, &stats, query, userID); err != nil {
		return models.UserStats{}, wrapErr("reload user stats", err)
	}

	if err := tx.Commit(); err != nil {
		return models.UserStats{}, wrapErr("commit bind user stats", err)
	}
	return stats, nil
}

// SaveUserStats writes every mutable field of stats
func (r *UserRepository) SaveUserStats(ctx context.Context, stats models.UserStats) error {
	var lastReviewed sql.NullTime
	if stats.LastReviewed.Valid {
		lastReviewed = sql.NullTime{Time: utc(stats.LastReviewed.Time), Valid: true}
	}

	query := r.db.Rebind(`
		UPDATE user_stats SET
			chat_id = ?,
			total_cards = ?,
			learned_cards = ?,
			review_streak = ?,
			last_reviewed = ?,
			reminder_time = ?
		WHERE user_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		stats.ChatID,
		stats.TotalCards,
		stats.LearnedCards,
		stats.ReviewStreak,
		lastReviewed,
		stats.ReminderTime,
		stats.UserID,
	)
	if err != nil {
		return wrapErr("save user stats", err)
	}
	return requireRow("save user stats", result)
}

// RecordReview increments the review streak and stamps the review time
func (r *UserRepository) RecordReview(ctx context.Context, userID int64, at time.Time) error {
	query := r.db.Rebind(`
		UPDATE user_stats SET
			review_streak = review_streak + 1,
			last_reviewed = ?
		WHERE user_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query, utc(at), userID)
	if err != nil {
		return wrapErr("record review", err)
	}
	return requireRow("record review", result)
}

// SetReminderTime changes the time of day the user wants to be reminded
func (r *UserRepository) SetReminderTime(ctx context.Context, userID int64, t models.TimeOfDay) error {
	query := r.db.Rebind(`UPDATE user_stats SET reminder_time = ? WHERE user_id = ?`)
	result, err := r.db.ExecContext(ctx, query, t.String(), userID)
	if err != nil {
		return wrapErr("set reminder time", err)
	}
	return requireRow("set reminder time", result)
}

// ListReminderTargets returns stats bound to a chat whose reminder time equals t
func (r *UserRepository) ListReminderTargets(ctx context.Context, t models.TimeOfDay) ([]models.UserStats, error) {
	query := r.db.Rebind(`
		SELECT ` + statsColumns + `
		FROM user_stats
		WHERE chat_id IS NOT NULL AND reminder_time = ?
		ORDER BY user_id ASC
	`)
	stats := []models.UserStats{}
	if err := r.db.SelectContext(ctx, &stats, query, t.String()); err != nil {
		return nil, wrapErr("list reminder targets", err)
	}
	return stats, nil
}

// RefreshCounters recomputes the cached card counters of an account
func (r *UserRepository) RefreshCounters(ctx context.Context, userID int64) (models.UserStats, error) {
	query := r.db.Rebind(`
		UPDATE user_stats SET
			total_cards = (SELECT COUNT(*) FROM cards WHERE owner_id = ?),
			learned_cards = (
				SELECT COUNT(*) FROM cards c
				JOIN schedules s ON s.card_id = c.id
				WHERE c.owner_id = ? AND s.repetitions >= ?
			)
		WHERE user_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query, userID, userID, models.LearnedRepetitions, userID)
	if err != nil {
		return models.UserStats{}, wrapErr("refresh counters", err)
	}
	if err := requireRow("refresh counters", result); err != nil {
		return models.UserStats{}, err
	}
	return r.GetUserStatsByUser(ctx, userID)
}

func requireRow(op string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapErr(op+" rows affected", err)
	}
	if rows == 0 {
		return wrapErr(op, models.ErrNotFound)
	}
	return nil
}

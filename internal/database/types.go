package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/linguabot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Store groups the repositories backing the card store and user stats
type Store struct {
	*CardRepository
	*ScheduleRepository
	*UserRepository
}

// NewStore creates all repositories over one connection
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		CardRepository:     NewCardRepository(db),
		ScheduleRepository: NewScheduleRepository(db),
		UserRepository:     NewUserRepository(db),
	}
}

// wrapErr maps driver errors onto the domain error taxonomy
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStore, err)
}

// utc normalizes timestamps so text-stored SQLite values compare in order
func utc(t time.Time) time.Time {
	return t.UTC()
}

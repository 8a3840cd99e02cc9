package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/linguabot/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the database described by cfg and makes sure the schema exists
func Connect(cfg config.DBConfig) (*sqlx.DB, error) {
	if cfg.Driver == DriverSQLite && !isMemoryDSN(cfg.DSN) {
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite doesn't support multiple writers; one connection also keeps
		// in-memory databases alive between queries
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed db ping: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := InitializeSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// InitializeSchema creates necessary tables if they don't exist
func InitializeSchema(ctx context.Context, db *sqlx.DB) error {
	statements := sqliteSchema
	if db.DriverName() == DriverPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL,
		word TEXT NOT NULL,
		word_key TEXT NOT NULL,
		translation TEXT NOT NULL,
		example TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT 'beginner',
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_owner_word ON cards (owner_id, word_key)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		card_id INTEGER PRIMARY KEY,
		next_review TIMESTAMP NOT NULL,
		ease_factor REAL NOT NULL DEFAULT 2.5,
		interval_days INTEGER NOT NULL DEFAULT 1,
		repetitions INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_next_review ON schedules (next_review)`,
	`CREATE TABLE IF NOT EXISTS user_stats (
		user_id INTEGER PRIMARY KEY,
		chat_id INTEGER UNIQUE,
		total_cards INTEGER NOT NULL DEFAULT 0,
		learned_cards INTEGER NOT NULL DEFAULT 0,
		review_streak INTEGER NOT NULL DEFAULT 0,
		last_reviewed TIMESTAMP,
		reminder_time TEXT DEFAULT '09:00',
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		word TEXT NOT NULL,
		word_key TEXT NOT NULL,
		translation TEXT NOT NULL,
		example TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT 'beginner',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_owner_word ON cards (owner_id, word_key)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		card_id BIGINT PRIMARY KEY REFERENCES cards(id) ON DELETE CASCADE,
		next_review TIMESTAMPTZ NOT NULL,
		ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		interval_days INTEGER NOT NULL DEFAULT 1,
		repetitions INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_next_review ON schedules (next_review)`,
	`CREATE TABLE IF NOT EXISTS user_stats (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		chat_id BIGINT UNIQUE,
		total_cards INTEGER NOT NULL DEFAULT 0,
		learned_cards INTEGER NOT NULL DEFAULT 0,
		review_streak INTEGER NOT NULL DEFAULT 0,
		last_reviewed TIMESTAMPTZ,
		reminder_time TEXT DEFAULT '09:00'
	)`,
}

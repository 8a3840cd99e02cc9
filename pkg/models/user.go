package models

import (
	"database/sql"
	"time"
)

// User is the underlying account that owns cards
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserStats holds per-account counters and the external chat binding
type UserStats struct {
	UserID       int64         `json:"user_id" db:"user_id"`
	ChatID       sql.NullInt64 `json:"chat_id" db:"chat_id"` // set on first bot contact
	TotalCards   int           `json:"total_cards" db:"total_cards"`
	LearnedCards int           `json:"learned_cards" db:"learned_cards"`
	ReviewStreak int           `json:"review_streak" db:"review_streak"`
	LastReviewed sql.NullTime  `json:"last_reviewed" db:"last_reviewed"`
	ReminderTime NullTimeOfDay `json:"reminder_time" db:"reminder_time"`
}

// Progress is the summary shown to a user
type Progress struct {
	TotalCards   int
	LearnedCards int
	ReviewStreak int
	ByLevel      map[Level]int
}

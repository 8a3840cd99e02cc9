package models

import "time"

// Defaults applied to the schedule created alongside every new card
const (
	DefaultEaseFactor = 2.5
	DefaultInterval   = 1
	MinEaseFactor     = 1.3
	// LearnedRepetitions is the number of graded reviews after which a card counts as learned
	LearnedRepetitions = 3
)

// Schedule is the spaced-repetition state attached one-to-one to a Card
type Schedule struct {
	CardID      int64     `json:"card_id" db:"card_id"`
	NextReview  time.Time `json:"next_review" db:"next_review"`
	EaseFactor  float64   `json:"ease_factor" db:"ease_factor"`
	Interval    int       `json:"interval" db:"interval_days"` // days
	Repetitions int       `json:"repetitions" db:"repetitions"`
}

// NewSchedule returns the initial schedule for a card created at now
func NewSchedule(cardID int64, now time.Time) Schedule {
	return Schedule{
		CardID:      cardID,
		NextReview:  now,
		EaseFactor:  DefaultEaseFactor,
		Interval:    DefaultInterval,
		Repetitions: 0,
	}
}

// IsDue reports whether the card should be shown at asOf. The boundary is inclusive.
func (s Schedule) IsDue(asOf time.Time) bool {
	return !s.NextReview.After(asOf)
}

// IsLearned reports whether the card has been graded often enough to count as learned
func (s Schedule) IsLearned() bool {
	return s.Repetitions >= LearnedRepetitions
}

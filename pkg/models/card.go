package models

import (
	"fmt"
	"strings"
	"time"
)

// Level is the difficulty level a user assigns to a card
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists every valid level in display order
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// ParseLevel parses a level name; an empty string yields the beginner level
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelBeginner, nil
	}
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown level %q", ErrValidation, s)
}

// Card represents a word/translation pair owned by a user
type Card struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	Word        string    `json:"word" db:"word"`
	Translation string    `json:"translation" db:"translation"`
	Example     string    `json:"example" db:"example"`
	Note        string    `json:"note" db:"note"`
	Level       Level     `json:"level" db:"level"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (c Card) String() string {
	return c.Word + " → " + c.Translation
}

// CardInput carries the editable fields of a card
type CardInput struct {
	Word        string
	Translation string
	Example     string
	Note        string
	Level       Level
}

// Validate trims the input and checks required fields
func (in *CardInput) Validate() error {
	in.Word = strings.TrimSpace(in.Word)
	in.Translation = strings.TrimSpace(in.Translation)
	in.Example = strings.TrimSpace(in.Example)
	in.Note = strings.TrimSpace(in.Note)
	if in.Word == "" {
		return fmt.Errorf("%w: word cannot be empty", ErrValidation)
	}
	if in.Translation == "" {
		return fmt.Errorf("%w: translation cannot be empty", ErrValidation)
	}
	if in.Level == "" {
		in.Level = LevelBeginner
	}
	if _, err := ParseLevel(string(in.Level)); err != nil {
		return err
	}
	return nil
}

package exercise

import (
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/internal/spaced_repetition"
	"github.com/example/linguabot/pkg/models"
)

// QuizPrompt is a started quiz
type QuizPrompt struct {
	Word     string
	Options  []string
	Replaced session.Kind // kind of the unanswered session this one overwrote, if any
}

// MatchPrompt is a started matching game
type MatchPrompt struct {
	Target   string
	Options  []string // translations of the sampled cards, shuffled
	Replaced session.Kind
}

// ReviewPrompt is a started review of one due card
type ReviewPrompt struct {
	Card     models.Card
	Due      int
	Replaced session.Kind
}

// Outcome describes how a reply was evaluated
type Outcome struct {
	// Handled is false when no session accepted the reply
	Handled bool
	// Kind of the session the reply was evaluated against, also set when an
	// active session ignored the reply
	Kind  session.Kind
	Input session.InputKind

	Correct  bool
	Expected string

	// Unverified is set when a matching reply names a word outside the game
	Unverified bool
	// Retry is set when the session was left active for another attempt
	Retry bool

	Card     models.Card
	Grade    spaced_repetition.Grade
	Schedule models.Schedule
	Reminder models.TimeOfDay
}

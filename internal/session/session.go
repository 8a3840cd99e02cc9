// Package session keeps the ephemeral per-user state of in-flight exercises
// and multi-step commands between conversational turns.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags the variant held by a Session
type Kind int

const (
	KindPendingInput Kind = iota + 1
	KindQuiz
	KindMatch
	KindReview
)

func (k Kind) String() string {
	switch k {
	case KindPendingInput:
		return "pending_input"
	case KindQuiz:
		return "quiz"
	case KindMatch:
		return "match"
	case KindReview:
		return "review"
	}
	return "unknown"
}

// InputKind names the multi-step command awaiting free text
type InputKind string

const (
	InputAddCard         InputKind = "add_card"
	InputEditWord        InputKind = "edit_word"
	InputDeleteWord      InputKind = "delete_word"
	InputSetReminderTime InputKind = "set_reminder_time"
)

// State is one of PendingInput, Quiz, Match or Review
type State interface {
	Kind() Kind
}

// PendingInput awaits the free-text argument of a multi-step command
type PendingInput struct {
	Input InputKind
}

// Quiz awaits a selection among the offered options
type Quiz struct {
	Word          string
	CorrectAnswer string
	Options       []string
}

// Match awaits a "word → translation" reply for the target word
type Match struct {
	Target string
	Pairs  map[string]string // word → translation for the offered sample
}

// Review awaits a difficulty grade for one due card
type Review struct {
	CardID int64
	Word   string
}

func (PendingInput) Kind() Kind { return KindPendingInput }
func (Quiz) Kind() Kind         { return KindQuiz }
func (Match) Kind() Kind        { return KindMatch }
func (Review) Kind() Kind       { return KindReview }

// Session is a registered State together with its identity and issue time
type Session struct {
	ID       uuid.UUID
	UserID   int64
	State    State
	IssuedAt time.Time
}

// Kind returns the kind of the held state
func (s Session) Kind() Kind {
	if s.State == nil {
		return 0
	}
	return s.State.Kind()
}

// Expired reports whether the session is older than ttl at now. A zero ttl never expires.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.IssuedAt) >= ttl
}

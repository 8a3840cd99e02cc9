// Package exercise builds quiz, matching and review exercises from a user's
// cards, registers them as sessions and evaluates the replies that consume them.
package exercise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/internal/spaced_repetition"
	"github.com/example/linguabot/pkg/models"
)

// Minimum card counts per exercise
const (
	QuizMinCards  = 4
	QuizOptions   = 4
	MatchMinCards = 2
	MatchSample   = 4
)

// CardStore is the card and schedule storage the engine works against
type CardStore interface {
	CreateCard(ctx context.Context, ownerID int64, in models.CardInput) (models.Card, error)
	GetCard(ctx context.Context, id, ownerID int64) (models.Card, error)
	FindCardByWord(ctx context.Context, ownerID int64, word string) (models.Card, error)
	ListCards(ctx context.Context, ownerID int64, level models.Level) ([]models.Card, error)
	ListDueCards(ctx context.Context, ownerID int64, asOf time.Time) ([]models.Card, error)
	CountByLevel(ctx context.Context, ownerID int64) (map[models.Level]int, error)
	UpdateCard(ctx context.Context, id, ownerID int64, in models.CardInput) error
	DeleteCard(ctx context.Context, id, ownerID int64) error
	UpdateSchedule(ctx context.Context, cardID int64, fn func(models.Schedule) (models.Schedule, error)) (models.Schedule, error)
}

// UserStore is the account and stats storage the engine works against
type UserStore interface {
	CreateUser(ctx context.Context, username string) (models.User, error)
	GetUserStats(ctx context.Context, chatID int64) (models.UserStats, error)
	BindUserStats(ctx context.Context, userID, chatID int64) (models.UserStats, error)
	RecordReview(ctx context.Context, userID int64, at time.Time) error
	SetReminderTime(ctx context.Context, userID int64, t models.TimeOfDay) error
	RefreshCounters(ctx context.Context, userID int64) (models.UserStats, error)
}

// Store combines both stores
type Store interface {
	CardStore
	UserStore
}

// Engine runs exercises for many users. Every entry point holds the
// per-user lock of the session registry for the whole turn.
type Engine struct {
	store    Store
	sessions *session.Registry
	policy   *spaced_repetition.ThreeLevel
	now      func() time.Time
	log      *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithPolicy replaces the default scheduling policy
func WithPolicy(p *spaced_repetition.ThreeLevel) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// NewEngine creates an exercise engine
func NewEngine(store Store, sessions *session.Registry, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		sessions: sessions,
		policy:   spaced_repetition.NewThreeLevel(),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// user resolves the stats bound to a chat
func (e *Engine) user(ctx context.Context, chatID int64) (models.UserStats, error) {
	stats, err := e.store.GetUserStats(ctx, chatID)
	if errors.Is(err, models.ErrNotFound) {
		return models.UserStats{}, models.ErrUserNotRegistered
	}
	if err != nil {
		return models.UserStats{}, err
	}
	return stats, nil
}

// Register binds chatID to an account, creating the account on first contact.
// It reports whether a new account was created.
func (e *Engine) Register(ctx context.Context, chatID int64, username string) (models.UserStats, bool, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	stats, err := e.store.GetUserStats(ctx, chatID)
	if err == nil {
		return stats, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.UserStats{}, false, err
	}

	if username == "" {
		username = fmt.Sprintf("chat_%d", chatID)
	}
	user, err := e.store.CreateUser(ctx, username)
	if err != nil {
		return models.UserStats{}, false, fmt.Errorf("create user: %w", err)
	}
	stats, err = e.store.BindUserStats(ctx, user.ID, chatID)
	if err != nil {
		return models.UserStats{}, false, fmt.Errorf("bind stats: %w", err)
	}

	e.log.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("chat_id", chatID),
		zap.String("username", username),
	)
	return stats, true, nil
}

// Today lists the user's due cards, most overdue first
func (e *Engine) Today(ctx context.Context, chatID int64) ([]models.Card, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	stats, err := e.user(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return e.store.ListDueCards(ctx, stats.UserID, e.now())
}

// Progress refreshes and returns the user's counters
func (e *Engine) Progress(ctx context.Context, chatID int64) (models.Progress, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	stats, err := e.user(ctx, chatID)
	if err != nil {
		return models.Progress{}, err
	}
	stats, err = e.store.RefreshCounters(ctx, stats.UserID)
	if err != nil {
		return models.Progress{}, err
	}
	byLevel, err := e.store.CountByLevel(ctx, stats.UserID)
	if err != nil {
		return models.Progress{}, err
	}
	return models.Progress{
		TotalCards:   stats.TotalCards,
		LearnedCards: stats.LearnedCards,
		ReviewStreak: stats.ReviewStreak,
		ByLevel:      byLevel,
	}, nil
}

// Cards lists up to limit cards of the user and the total matching count.
// An empty level lists every level; a non-positive limit lists everything.
func (e *Engine) Cards(ctx context.Context, chatID int64, level models.Level, limit int) ([]models.Card, int, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	stats, err := e.user(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}
	cards, err := e.store.ListCards(ctx, stats.UserID, level)
	if err != nil {
		return nil, 0, err
	}
	total := len(cards)
	if limit > 0 && total > limit {
		cards = cards[:limit]
	}
	return cards, total, nil
}

// Cancel drops the user's active session and returns its kind
func (e *Engine) Cancel(chatID int64) (session.Kind, bool) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	s, ok := e.sessions.Get(chatID)
	if !ok {
		return 0, false
	}
	e.sessions.ClearIf(chatID, s.ID)
	return s.Kind(), true
}

// HandleReply evaluates free text against the user's active session.
// Text that matches no session, or that the session does not accept, is
// returned with Handled set to false and leaves every session untouched.
func (e *Engine) HandleReply(ctx context.Context, chatID int64, text string) (Outcome, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	s, ok := e.sessions.Get(chatID)
	if !ok {
		return Outcome{}, nil
	}

	switch st := s.State.(type) {
	case session.Quiz:
		return e.answerQuiz(chatID, s, st, text), nil
	case session.Match:
		return e.answerMatch(chatID, s, st, text), nil
	case session.Review:
		return e.answerReview(ctx, chatID, s, st, text)
	case session.PendingInput:
		return e.answerInput(ctx, chatID, s, st, text)
	}

	e.log.Error("unknown session state, dropping", zap.Int64("chat_id", chatID), zap.Stringer("kind", s.Kind()))
	e.sessions.ClearIf(chatID, s.ID)
	return Outcome{}, nil
}

func replacedKind(replaced *session.Session) session.Kind {
	if replaced == nil {
		return 0
	}
	return replaced.Kind()
}

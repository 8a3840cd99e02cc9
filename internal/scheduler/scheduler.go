// Package scheduler runs the periodic jobs of the bot: the per-minute
// reminder scan and the session expiry sweep.
package scheduler

//go:generate mockgen -source=scheduler.go -destination=mock/scheduler_mock.go

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/linguabot/pkg/models"
)

// Source finds reminder recipients and their due cards
type Source interface {
	ListReminderTargets(ctx context.Context, t models.TimeOfDay) ([]models.UserStats, error)
	CountDueCards(ctx context.Context, ownerID int64, asOf time.Time) (int, error)
}

// Notifier delivers a reminder to an external chat
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Sweeper evicts expired sessions
type Sweeper interface {
	Sweep() int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
	sweeper   Sweeper
	loc       *time.Location
	now       func() time.Time
	log       *zap.Logger

	mu       sync.Mutex
	notified map[int64]time.Time // chat id -> minute of the last reminder
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLocation sets the timezone reminder times are compared in
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSweeper adds the session expiry sweep to the jobs
func WithSweeper(sw Sweeper) Option {
	return func(s *Scheduler) {
		s.sweeper = sw
	}
}

// New creates a new scheduler instance
func New(source Source, notifier Notifier, log *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:   source,
		notifier: notifier,
		loc:      time.Local,
		now:      time.Now,
		log:      log,
		notified: make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scheduler = gocron.NewScheduler(s.loc)
	return s
}

// Start registers the jobs and runs them in the background until ctx is done or Stop is called
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.scheduler.Every(1).Minute().StartAt(s.nextMinute()).Do(func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	if s.sweeper != nil {
		if _, err := s.scheduler.Every(1).Minute().Do(func() { s.sweeper.Sweep() }); err != nil {
			return fmt.Errorf("schedule session sweep: %w", err)
		}
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started", zap.String("timezone", s.loc.String()))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) nextMinute() time.Time {
	return s.now().In(s.loc).Truncate(time.Minute).Add(time.Minute)
}

// Tick notifies every bound user whose reminder time is the current local
// minute and who has due cards. A user is notified at most once per minute.
// It returns the number of reminders delivered.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := s.now().In(s.loc)
	minute := now.Truncate(time.Minute)
	at := models.TimeOfDayOf(now)

	s.forgetBefore(minute)

	targets, err := s.source.ListReminderTargets(ctx, at)
	if err != nil {
		s.log.Error("failed to list reminder targets", zap.Stringer("time", at), zap.Error(err))
		return 0
	}

	sent := 0
	for _, user := range targets {
		if !user.ChatID.Valid {
			continue
		}
		chatID := user.ChatID.Int64
		if s.wasNotified(chatID, minute) {
			continue
		}

		due, err := s.source.CountDueCards(ctx, user.UserID, now)
		if err != nil {
			s.log.Error("failed to count due cards", zap.Int64("user_id", user.UserID), zap.Error(err))
			continue
		}
		if due == 0 {
			continue
		}

		if err := s.notifier.Notify(ctx, chatID, ReminderText(due)); err != nil {
			s.log.Warn("failed to send reminder", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}
		s.markNotified(chatID, minute)
		sent++
	}

	if sent > 0 {
		s.log.Info("reminders sent", zap.Stringer("time", at), zap.Int("count", sent))
	}
	return sent
}

// RunManualCheck sends a reminder to one user right away if cards are due.
// It reports whether a reminder was sent.
func (s *Scheduler) RunManualCheck(ctx context.Context, user models.UserStats) (bool, error) {
	if !user.ChatID.Valid {
		return false, models.ErrUserNotRegistered
	}
	due, err := s.source.CountDueCards(ctx, user.UserID, s.now())
	if err != nil {
		return false, err
	}
	if due == 0 {
		return false, nil
	}
	if err := s.notifier.Notify(ctx, user.ChatID.Int64, ReminderText(due)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Scheduler) wasNotified(chatID int64, minute time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.notified[chatID]
	return ok && last.Equal(minute)
}

func (s *Scheduler) markNotified(chatID int64, minute time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified[chatID] = minute
}

func (s *Scheduler) forgetBefore(minute time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for chatID, last := range s.notified {
		if last.Before(minute) {
			delete(s.notified, chatID)
		}
	}
}

// ReminderText is the reminder message for due cards
func ReminderText(due int) string {
	return fmt.Sprintf("🔔 Напоминание! ⏰\nСлов к повторению: %d\n\n📌 /review — начать повторение", due)
}

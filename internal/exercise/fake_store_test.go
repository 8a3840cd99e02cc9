package exercise

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/linguabot/pkg/models"
)

type fakeStore struct {
	mu        sync.Mutex
	seq       int64
	users     map[int64]models.User
	stats     map[int64]models.UserStats // by user id
	cards     map[int64]models.Card
	schedules map[int64]models.Schedule
	now       func() time.Time

	updateErr error
	reviewErr error
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		users:     make(map[int64]models.User),
		stats:     make(map[int64]models.UserStats),
		cards:     make(map[int64]models.Card),
		schedules: make(map[int64]models.Schedule),
		now:       now,
	}
}

func (s *fakeStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *fakeStore) CreateUser(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: s.nextID(), Username: username, CreatedAt: s.now()}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) GetUserStats(ctx context.Context, chatID int64) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stats {
		if st.ChatID.Valid && st.ChatID.Int64 == chatID {
			return st, nil
		}
	}
	return models.UserStats{}, models.ErrNotFound
}

func (s *fakeStore) BindUserStats(ctx context.Context, userID, chatID int64) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.stats {
		if st.ChatID.Valid && st.ChatID.Int64 == chatID && id != userID {
			st.ChatID = sql.NullInt64{}
			s.stats[id] = st
		}
	}
	st, ok := s.stats[userID]
	if !ok {
		st = models.UserStats{
			UserID:       userID,
			ReminderTime: models.NullTimeOfDay{TimeOfDay: models.DefaultReminderTime, Valid: true},
		}
	}
	st.ChatID = sql.NullInt64{Int64: chatID, Valid: true}
	s.stats[userID] = st
	return st, nil
}

func (s *fakeStore) RecordReview(ctx context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reviewErr != nil {
		return s.reviewErr
	}
	st := s.stats[userID]
	st.ReviewStreak++
	st.LastReviewed = sql.NullTime{Time: at, Valid: true}
	s.stats[userID] = st
	return nil
}

func (s *fakeStore) SetReminderTime(ctx context.Context, userID int64, t models.TimeOfDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats[userID]
	st.ReminderTime = models.NullTimeOfDay{TimeOfDay: t, Valid: true}
	s.stats[userID] = st
	return nil
}

func (s *fakeStore) RefreshCounters(ctx context.Context, userID int64) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats[userID]
	st.TotalCards, st.LearnedCards = 0, 0
	for _, c := range s.cards {
		if c.OwnerID != userID {
			continue
		}
		st.TotalCards++
		if s.schedules[c.ID].IsLearned() {
			st.LearnedCards++
		}
	}
	s.stats[userID] = st
	return st, nil
}

func (s *fakeStore) CreateCard(ctx context.Context, ownerID int64, in models.CardInput) (models.Card, error) {
	if err := in.Validate(); err != nil {
		return models.Card{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Card{
		ID:          s.nextID(),
		OwnerID:     ownerID,
		Word:        in.Word,
		Translation: in.Translation,
		Example:     in.Example,
		Note:        in.Note,
		Level:       in.Level,
		CreatedAt:   s.now(),
	}
	s.cards[c.ID] = c
	s.schedules[c.ID] = models.NewSchedule(c.ID, s.now())
	return c, nil
}

func (s *fakeStore) GetCard(ctx context.Context, id, ownerID int64) (models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.OwnerID != ownerID {
		return models.Card{}, models.ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) FindCardByWord(ctx context.Context, ownerID int64, word string) (models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(word))
	for _, c := range s.sortedLocked() {
		if c.OwnerID == ownerID && strings.ToLower(c.Word) == key {
			return c, nil
		}
	}
	return models.Card{}, models.ErrNotFound
}

func (s *fakeStore) sortedLocked() []models.Card {
	out := make([]models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeStore) ListCards(ctx context.Context, ownerID int64, level models.Level) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Card
	for _, c := range s.sortedLocked() {
		if c.OwnerID == ownerID && (level == "" || c.Level == level) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) ListDueCards(ctx context.Context, ownerID int64, asOf time.Time) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Card
	for _, c := range s.sortedLocked() {
		if c.OwnerID == ownerID && s.schedules[c.ID].IsDue(asOf) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.schedules[out[i].ID].NextReview.Before(s.schedules[out[j].ID].NextReview)
	})
	return out, nil
}

func (s *fakeStore) CountByLevel(ctx context.Context, ownerID int64) (map[models.Level]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.Level]int)
	for _, c := range s.cards {
		if c.OwnerID == ownerID {
			out[c.Level]++
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateCard(ctx context.Context, id, ownerID int64, in models.CardInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.OwnerID != ownerID {
		return models.ErrNotFound
	}
	c.Word, c.Translation, c.Example, c.Note, c.Level = in.Word, in.Translation, in.Example, in.Note, in.Level
	s.cards[id] = c
	return nil
}

func (s *fakeStore) DeleteCard(ctx context.Context, id, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.OwnerID != ownerID {
		return models.ErrNotFound
	}
	delete(s.cards, id)
	delete(s.schedules, id)
	return nil
}

func (s *fakeStore) UpdateSchedule(ctx context.Context, cardID int64, fn func(models.Schedule) (models.Schedule, error)) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return models.Schedule{}, s.updateErr
	}
	cur, ok := s.schedules[cardID]
	if !ok {
		return models.Schedule{}, models.ErrNotFound
	}
	next, err := fn(cur)
	if err != nil {
		return models.Schedule{}, err
	}
	s.schedules[cardID] = next
	return next, nil
}

func (s *fakeStore) schedule(cardID int64) models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedules[cardID]
}

func (s *fakeStore) setSchedule(sched models.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sched.CardID] = sched
}

func (s *fakeStore) statsOf(userID int64) models.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[userID]
}

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/linguabot/internal/config"
	"github.com/example/linguabot/pkg/models"
)

var testNow = time.Date(2024, 4, 2, 10, 15, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Connect(config.DBConfig{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	clock := func() time.Time { return testNow }
	store.CardRepository.now = clock
	store.UserRepository.now = clock
	return store
}

func newTestUser(t *testing.T, store *Store, chatID int64) models.UserStats {
	t.Helper()
	ctx := context.Background()
	user, err := store.CreateUser(ctx, "tester")
	require.NoError(t, err)
	stats, err := store.BindUserStats(ctx, user.ID, chatID)
	require.NoError(t, err)
	return stats
}

func mustCreateCard(t *testing.T, store *Store, ownerID int64, word, translation string, level models.Level) models.Card {
	t.Helper()
	card, err := store.CreateCard(context.Background(), ownerID, models.CardInput{Word: word, Translation: translation, Level: level})
	require.NoError(t, err)
	return card
}

func setNextReview(t *testing.T, store *Store, cardID int64, at time.Time) {
	t.Helper()
	s, err := store.GetSchedule(context.Background(), cardID)
	require.NoError(t, err)
	s.NextReview = at
	require.NoError(t, store.SaveSchedule(context.Background(), s))
}

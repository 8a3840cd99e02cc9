package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linguabot/pkg/models"
)

func TestUserRepository_BindUserStats(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetUserStats(ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)

	user, err := store.CreateUser(ctx, "alice")
	require.NoError(t, err)

	stats, err := store.BindUserStats(ctx, user.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stats.UserID)
	assert.True(t, stats.ChatID.Valid)
	assert.Equal(t, int64(42), stats.ChatID.Int64)
	assert.Equal(t, models.NullTimeOfDay{TimeOfDay: models.DefaultReminderTime, Valid: true}, stats.ReminderTime)
	assert.False(t, stats.LastReviewed.Valid)

	require.NoError(t, store.RecordReview(ctx, user.ID, testNow))

	// rebinding keeps the stats
	stats, err = store.BindUserStats(ctx, user.ID, 43)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReviewStreak)
	assert.Equal(t, int64(43), stats.ChatID.Int64)

	_, err = store.GetUserStats(ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// a chat moves to the account that binds it last
	other, err := store.CreateUser(ctx, "bob")
	require.NoError(t, err)
	_, err = store.BindUserStats(ctx, other.ID, 43)
	require.NoError(t, err)

	got, err := store.GetUserStats(ctx, 43)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.UserID)

	old, err := store.GetUserStatsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, old.ChatID.Valid)
	assert.Equal(t, 1, old.ReviewStreak)
}

func TestUserRepository_RecordReview(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	stats := newTestUser(t, store, 7)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordReview(ctx, stats.UserID, testNow))
	}

	got, err := store.GetUserStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ReviewStreak)
	require.True(t, got.LastReviewed.Valid)
	assert.True(t, got.LastReviewed.Time.Equal(testNow))

	err = store.RecordReview(ctx, 999, testNow)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserRepository_ReminderTargets(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	morning := newTestUser(t, store, 1)
	evening := newTestUser(t, store, 2)
	require.NoError(t, store.SetReminderTime(ctx, evening.UserID, models.TimeOfDay{Hour: 20, Minute: 30}))

	unbound, err := store.CreateUser(ctx, "ghost")
	require.NoError(t, err)
	_, err = store.BindUserStats(ctx, unbound.ID, 3)
	require.NoError(t, err)
	_, err = store.BindUserStats(ctx, morning.UserID, 3)
	require.NoError(t, err)

	targets, err := store.ListReminderTargets(ctx, models.DefaultReminderTime)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, morning.UserID, targets[0].UserID)
	assert.Equal(t, int64(3), targets[0].ChatID.Int64)

	targets, err = store.ListReminderTargets(ctx, models.TimeOfDay{Hour: 20, Minute: 30})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, evening.UserID, targets[0].UserID)

	targets, err = store.ListReminderTargets(ctx, models.TimeOfDay{Hour: 3})
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestUserRepository_RefreshCounters(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	stats := newTestUser(t, store, 5)

	cat := mustCreateCard(t, store, stats.UserID, "cat", "кот", "")
	mustCreateCard(t, store, stats.UserID, "dog", "собака", "")

	s, err := store.GetSchedule(ctx, cat.ID)
	require.NoError(t, err)
	s.Repetitions = models.LearnedRepetitions
	require.NoError(t, store.SaveSchedule(ctx, s))

	got, err := store.RefreshCounters(ctx, stats.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalCards)
	assert.Equal(t, 1, got.LearnedCards)

	got.ReviewStreak = 9
	require.NoError(t, store.SaveUserStats(ctx, got))
	reloaded, err := store.GetUserStatsByUser(ctx, stats.UserID)
	require.NoError(t, err)
	assert.Equal(t, 9, reloaded.ReviewStreak)
	assert.Equal(t, got.ReminderTime, reloaded.ReminderTime)
}

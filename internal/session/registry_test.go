package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(ttl time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewRegistry(zap.NewNop(), WithTTL(ttl), WithClock(clock.Now)), clock
}

func TestRegistry_SetGet(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	_, ok := r.Get(1)
	assert.False(t, ok)

	s, replaced := r.Set(1, Quiz{Word: "cat", CorrectAnswer: "кот"})
	assert.Nil(t, replaced)
	assert.Equal(t, KindQuiz, s.Kind())

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, Quiz{Word: "cat", CorrectAnswer: "кот"}, got.State)
}

func TestRegistry_SetReturnsReplaced(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	first, _ := r.Set(1, Review{CardID: 7, Word: "dog"})
	second, replaced := r.Set(1, PendingInput{Input: InputAddCard})

	require.NotNil(t, replaced)
	assert.Equal(t, first.ID, replaced.ID)
	assert.Equal(t, KindReview, replaced.Kind())
	assert.NotEqual(t, first.ID, second.ID)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, KindPendingInput, got.Kind())
}

func TestRegistry_Expiry(t *testing.T) {
	r, clock := newTestRegistry(time.Minute)

	r.Set(1, Match{Target: "cat", Pairs: map[string]string{"cat": "кот"}})
	clock.Advance(59 * time.Second)
	_, ok := r.Get(1)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = r.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	// an expired session is not reported as replaced
	r.Set(2, Quiz{})
	clock.Advance(2 * time.Minute)
	_, replaced := r.Set(2, Quiz{})
	assert.Nil(t, replaced)
}

func TestRegistry_ZeroTTLNeverExpires(t *testing.T) {
	r, clock := newTestRegistry(0)

	r.Set(1, Quiz{})
	clock.Advance(24 * time.Hour)
	_, ok := r.Get(1)
	assert.True(t, ok)
}

func TestRegistry_ClearIf(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	stale, _ := r.Set(1, Quiz{})
	fresh, _ := r.Set(1, Quiz{})

	assert.False(t, r.ClearIf(1, stale.ID))
	_, ok := r.Get(1)
	assert.True(t, ok)

	assert.True(t, r.ClearIf(1, fresh.ID))
	_, ok = r.Get(1)
	assert.False(t, ok)

	assert.False(t, r.ClearIf(1, fresh.ID))
	r.Clear(1)
}

func TestRegistry_Sweep(t *testing.T) {
	r, clock := newTestRegistry(time.Minute)

	r.Set(1, Quiz{})
	r.Set(2, Quiz{})
	clock.Advance(30 * time.Second)
	r.Set(3, Quiz{})
	clock.Advance(45 * time.Second)

	assert.Equal(t, 2, r.Sweep())
	assert.Equal(t, 1, r.Len())
	_, ok := r.Get(3)
	assert.True(t, ok)
}

func TestRegistry_UsersAreIsolated(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	const users = 32
	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				unlock := r.Lock(u)
				r.Set(u, Review{CardID: u, Word: "w"})
				s, ok := r.Get(u)
				if ok {
					r.ClearIf(u, s.ID)
				}
				r.Set(u, Review{CardID: u})
				unlock()
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, users, r.Len())
	for u := int64(1); u <= users; u++ {
		s, ok := r.Get(u)
		require.True(t, ok)
		assert.Equal(t, u, s.State.(Review).CardID)
	}
}

func TestRegistry_MixedKindsAreIsolated(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	stateFor := func(u int64, i int) State {
		word := fmt.Sprintf("w%d", u)
		switch (int(u) + i) % 4 {
		case 0:
			return PendingInput{Input: InputAddCard}
		case 1:
			return Quiz{Word: word, CorrectAnswer: word, Options: []string{word}}
		case 2:
			return Match{Target: word, Pairs: map[string]string{word: word}}
		default:
			return Review{CardID: u, Word: word}
		}
	}

	const (
		users  = 32
		rounds = 50
	)
	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				unlock := r.Lock(u)
				want := stateFor(u, i)
				set, _ := r.Set(u, want)
				got, ok := r.Get(u)
				if assert.True(t, ok, "user %d", u) {
					assert.Equal(t, set.ID, got.ID, "user %d", u)
					assert.Equal(t, want, got.State, "user %d", u)
				}
				if i%5 == 4 {
					r.ClearIf(u, set.ID)
					r.Set(u, want)
				}
				unlock()
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, users, r.Len())
	for u := int64(1); u <= users; u++ {
		s, ok := r.Get(u)
		require.True(t, ok)
		want := stateFor(u, rounds-1)
		assert.Equal(t, want.Kind(), s.Kind(), "user %d", u)
		assert.Equal(t, want, s.State, "user %d", u)
	}
}

func TestRegistry_LockSerializesOneUser(t *testing.T) {
	r, _ := newTestRegistry(DefaultTTL)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := r.Lock(42)
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	r.mu.Lock()
	assert.Empty(t, r.locks)
	r.mu.Unlock()
}

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long an unanswered session survives
const DefaultTTL = 10 * time.Minute

// Registry maps a user identity to at most one active session.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]Session
	locks    map[int64]*userLock

	ttl time.Duration
	now func() time.Time
	log *zap.Logger
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Registry
type Option func(*Registry)

// WithTTL sets the session lifetime; zero disables expiry
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl >= 0 {
			r.ttl = ttl
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty registry
func NewRegistry(log *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[int64]Session),
		locks:    make(map[int64]*userLock),
		ttl:      DefaultTTL,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lock serializes turns of one user. The returned func releases the lock.
func (r *Registry) Lock(userID int64) func() {
	r.mu.Lock()
	l, ok := r.locks[userID]
	if !ok {
		l = &userLock{}
		r.locks[userID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, userID)
		}
		r.mu.Unlock()
	}
}

// Set registers state for userID, overwriting any active session.
// The overwritten session, if any, is returned so callers can tell the user.
func (r *Registry) Set(userID int64, state State) (Session, *Session) {
	s := Session{
		ID:       uuid.New(),
		UserID:   userID,
		State:    state,
		IssuedAt: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var replaced *Session
	if old, ok := r.sessions[userID]; ok && !old.Expired(s.IssuedAt, r.ttl) {
		replaced = &old
		r.log.Warn("active session overwritten",
			zap.Int64("user_id", userID),
			zap.Stringer("old_kind", old.Kind()),
			zap.Stringer("new_kind", s.Kind()),
		)
	}
	r.sessions[userID] = s
	return s, replaced
}

// Get returns the active session of userID. Expired sessions are evicted and reported absent.
func (r *Registry) Get(userID int64) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return Session{}, false
	}
	if s.Expired(r.now(), r.ttl) {
		delete(r.sessions, userID)
		r.log.Debug("session expired", zap.Int64("user_id", userID), zap.Stringer("kind", s.Kind()))
		return Session{}, false
	}
	return s, true
}

// Clear removes the session of userID. It is idempotent.
func (r *Registry) Clear(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// ClearIf removes the session of userID only if it is still the session with id.
// It reports whether a session was removed.
func (r *Registry) ClearIf(userID int64, id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok || s.ID != id {
		return false
	}
	delete(r.sessions, userID)
	return true
}

// Sweep evicts every expired session and returns how many were removed
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for userID, s := range r.sessions {
		if s.Expired(now, r.ttl) {
			delete(r.sessions, userID)
			removed++
		}
	}
	if removed > 0 {
		r.log.Debug("expired sessions swept", zap.Int("count", removed))
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

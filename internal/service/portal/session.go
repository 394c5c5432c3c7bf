package portal

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-portal/internal/domain/portal"
	"github.com/google/uuid"
)

type session struct {
	state    portal.State
	lastSeen time.Time
}

// sessionRegistry owns every session's State. The lock is held only while a
// reducer runs, never across a backend call.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func newSessionRegistry(now func() time.Time) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		now:      now,
	}
}

func (r *sessionRegistry) open() string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &session{state: portal.NewState(), lastSeen: r.now()}
	return id
}

func (r *sessionRegistry) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

func (r *sessionRegistry) get(id string) (portal.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return portal.State{}, portal.ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s.state, nil
}

// update replaces the session state with fn(state) and returns both values.
func (r *sessionRegistry) update(id string, fn func(portal.State) portal.State) (prev, next portal.State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return portal.State{}, portal.State{}, portal.ErrSessionNotFound
	}
	prev = s.state
	s.state = fn(prev)
	s.lastSeen = r.now()
	return prev, s.state, nil
}

// sweep drops sessions not seen for longer than idle and returns how many went.
func (r *sessionRegistry) sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

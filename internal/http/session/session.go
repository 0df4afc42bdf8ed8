// Package session keeps one workflow.State per browser, keyed by a random
// cookie. Sessions live in memory only, like the records themselves.
//
// LIFECYCLE
// ─────────
// A session is minted by the first request that changes state (a POST),
// never by a plain page view, so crawlers and health checks leave nothing
// behind. Every access refreshes the session's last-seen time; Sweep (or
// Run, which calls it on a ticker) drops sessions idle for longer than the
// idle timeout together with any draft parked in them. A browser whose
// session was dropped simply starts over on an empty form.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/student-registration/internal/workflow"
)

// CookieName is the cookie carrying the session key.
const CookieName = "registration_session"

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 30 * time.Minute

type entry struct {
	state    workflow.State
	lastSeen time.Time
}

// Manager hands out sessions and applies actions to them.
// It is safe for concurrent use.
type Manager struct {
	mu          sync.Mutex
	states      map[string]*entry
	idleTimeout time.Duration
	now         func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout sets how long a session may go untouched before Sweep
// drops it. Non-positive values keep the default.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		states:      make(map[string]*entry),
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup returns the key of the live session the request's cookie names,
// if any. It never creates a session.
func (m *Manager) Lookup(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.states[c.Value]
	if !ok {
		return "", false
	}
	e.lastSeen = m.now()
	return c.Value, true
}

// Key returns the session key of the request, minting a new one and
// setting the cookie when the request carries none (or an unknown or
// expired one).
func (m *Manager) Key(w http.ResponseWriter, r *http.Request) string {
	if key, ok := m.Lookup(r); ok {
		return key
	}

	key := uuid.NewString()
	m.mu.Lock()
	m.states[key] = &entry{state: workflow.Initial(), lastSeen: m.now()}
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

// State returns a copy of the session's state, or the initial state for
// an unknown key.
func (m *Manager) State(key string) workflow.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.states[key]
	if !ok {
		return workflow.Initial()
	}
	e.lastSeen = m.now()
	return e.state
}

// Dispatch runs the actions through workflow.Reduce in order and stores
// the result. It returns the final state.
func (m *Manager) Dispatch(key string, actions ...workflow.Action) workflow.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.states[key]
	if !ok {
		e = &entry{state: workflow.Initial()}
		m.states[key] = e
	}
	for _, a := range actions {
		e.state = workflow.Reduce(e.state, a)
	}
	e.lastSeen = m.now()
	return e.state
}

// Sweep drops every session idle for longer than the idle timeout and
// returns how many it dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTimeout)
	n := 0
	for key, e := range m.states {
		if e.lastSeen.Before(cutoff) {
			delete(m.states, key)
			n++
		}
	}
	return n
}

// Run calls Sweep every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

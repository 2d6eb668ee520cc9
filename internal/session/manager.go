// Package session owns the client-side session state machine. The backend
// is the single source of truth: local state is only ever a cache of the
// last verification result, and every transition into Authenticated is
// backed by a successful profile fetch.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/e0as/mobile-bridge/internal/api"
	"github.com/e0as/mobile-bridge/internal/cookies"
	"github.com/e0as/mobile-bridge/internal/log"
	"github.com/e0as/mobile-bridge/internal/profile"
	"github.com/e0as/mobile-bridge/internal/redirect"
)

// State is the session lifecycle state
type State string

const (
	// StateUnknown is the state before Initialize has run
	StateUnknown State = "unknown"
	// StateChecking is transient while a verification is in flight
	StateChecking State = "checking"
	// StateAuthenticated means the backend confirmed the session
	StateAuthenticated State = "authenticated"
	// StateUnauthenticated means there is no usable session
	StateUnauthenticated State = "unauthenticated"
)

// ErrVerificationFailed is returned when the browser flow reported success
// but the backend would not confirm the session. Callers surface it
// differently from a plain failed login: the user did authenticate at the
// provider, the handoff to the backend is what broke.
var ErrVerificationFailed = errors.New("could not verify session after authentication")

// Extractor pulls the session cookie out of the browser cookie store
type Extractor interface {
	Extract(ctx context.Context) (cookies.Cookie, bool)
}

// Backend is the slice of the API client the manager needs
type Backend interface {
	MyProfile(ctx context.Context) (*profile.User, error)
	CompleteProfile(ctx context.Context, payload *profile.User) (*profile.User, error)
	Logout(ctx context.Context) error
}

// Manager is the session state machine. All methods are safe for
// concurrent use; concurrent verification requests are coalesced.
type Manager struct {
	extractor Extractor
	backend   Backend
	store     cookies.ClearableStore // nil disables destructive clears

	group singleflight.Group

	mu     sync.RWMutex
	state  State
	user   *profile.User
	cookie cookies.Cookie
	gen    uint64 // bumped on every local clear; stale check results are dropped
}

// NewManager creates a manager in StateUnknown. The backend client is
// wired in afterwards via SetBackend because the client itself needs the
// manager as its cookie provider.
func NewManager(extractor Extractor, store cookies.ClearableStore) *Manager {
	return &Manager{
		extractor: extractor,
		store:     store,
		state:     StateUnknown,
	}
}

// SetBackend wires the API client. Must be called before any method that
// talks to the backend.
func (m *Manager) SetBackend(b Backend) {
	m.mu.Lock()
	m.backend = b
	m.mu.Unlock()
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns the cached user, nil unless authenticated
func (m *Manager) User() *profile.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// SessionCookie returns the cached session cookie, extracting from the
// browser store on a cache miss. It implements the API client's cookie
// provider.
func (m *Manager) SessionCookie(ctx context.Context) (cookies.Cookie, bool) {
	m.mu.RLock()
	cached := m.cookie
	m.mu.RUnlock()
	if !cached.IsZero() {
		return cached, true
	}

	extracted, ok := m.extractor.Extract(ctx)
	if !ok {
		return cookies.Cookie{}, false
	}

	m.mu.Lock()
	// another goroutine may have raced us; first write wins
	if m.cookie.IsZero() {
		m.cookie = extracted
	}
	cached = m.cookie
	m.mu.Unlock()
	return cached, true
}

// Initialize clears any cookies left over from a previous run, then checks
// whether a session exists. It always lands in Authenticated or
// Unauthenticated, never Checking.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			log.LogWarnWithFields("session", "Startup cookie clear failed, continuing", map[string]any{
				"error": err.Error(),
			})
		}
	}

	m.mu.Lock()
	m.cookie = cookies.Cookie{}
	m.mu.Unlock()

	return m.CheckSession(ctx)
}

// CheckSession verifies the session against the backend. Concurrent calls
// share one verification.
func (m *Manager) CheckSession(ctx context.Context) error {
	_, err, _ := m.group.Do("check", func() (any, error) {
		return nil, m.runCheck(ctx)
	})
	return err
}

// HandleAuthSuccess runs after the browser flow reported a success
// redirect: extract the session cookie and confirm it with the backend.
// Duplicate invocations (the browser can fire the same redirect more than
// once) are coalesced into a single verification.
func (m *Manager) HandleAuthSuccess(ctx context.Context, action redirect.Action) (*profile.User, error) {
	v, err, _ := m.group.Do("auth-success", func() (any, error) {
		return m.runAuthSuccess(ctx, action)
	})
	if err != nil {
		return nil, err
	}
	return v.(*profile.User), nil
}

func (m *Manager) runAuthSuccess(ctx context.Context, action redirect.Action) (*profile.User, error) {
	m.mu.Lock()
	m.state = StateChecking
	m.cookie = cookies.Cookie{} // force a fresh extraction, the flow just set new cookies
	startGen := m.gen
	backend := m.backend
	m.mu.Unlock()

	log.LogInfoWithFields("session", "Auth flow completed, verifying session", map[string]any{
		"action": string(action),
	})

	cookie, found := m.extractor.Extract(ctx)
	if found {
		m.mu.Lock()
		if m.gen == startGen {
			m.cookie = cookie
		}
		m.mu.Unlock()
	} else {
		// the backend may still accept the request if the platform attaches
		// cookies itself, so verification proceeds regardless
		log.LogWarnWithFields("session", "No session cookie extracted after auth success", nil)
	}

	user, err := backend.MyProfile(ctx)
	if err != nil {
		m.commit(startGen, StateUnauthenticated, nil, true)
		log.LogErrorWithFields("session", "Session verification failed after auth success", map[string]any{
			"action": string(action),
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	m.commit(startGen, StateAuthenticated, user, false)
	log.LogInfoWithFields("session", "Session verified", map[string]any{
		"action":          string(action),
		"role":            string(user.Role),
		"profileComplete": user.ProfileComplete(),
	})
	return user, nil
}

func (m *Manager) runCheck(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateChecking
	startGen := m.gen
	backend := m.backend
	m.mu.Unlock()

	if _, ok := m.SessionCookie(ctx); !ok {
		m.commit(startGen, StateUnauthenticated, nil, true)
		return nil
	}

	user, err := backend.MyProfile(ctx)
	if err != nil {
		// any failure lands in Unauthenticated; a transient network error
		// costs a re-login rather than leaving the state machine stuck
		m.commit(startGen, StateUnauthenticated, nil, true)
		if errors.Is(err, api.ErrRejected) || api.IsUnauthorized(err) {
			log.LogDebugWithFields("session", "Backend rejected session cookie", nil)
			return nil
		}
		return fmt.Errorf("checking session: %w", err)
	}

	m.commit(startGen, StateAuthenticated, user, false)
	return nil
}

// commit applies a check result unless the session was cleared while the
// check was in flight. A stale Authenticated result must never overwrite a
// logout.
func (m *Manager) commit(startGen uint64, state State, user *profile.User, dropCookie bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != startGen {
		log.LogDebugWithFields("session", "Dropping stale session check result", map[string]any{
			"state": string(state),
		})
		return
	}
	m.state = state
	m.user = user
	if dropCookie {
		m.cookie = cookies.Cookie{}
	}
}

// CompleteProfile submits the role-specific profile payload and replaces
// the cached user with the backend's response. The session stays
// authenticated throughout.
func (m *Manager) CompleteProfile(ctx context.Context, payload *profile.User) (*profile.User, error) {
	m.mu.RLock()
	backend := m.backend
	state := m.state
	m.mu.RUnlock()

	if state != StateAuthenticated {
		return nil, errors.New("profile completion requires an authenticated session")
	}

	user, err := backend.CompleteProfile(ctx, payload)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.user = user
	}
	m.mu.Unlock()
	return user, nil
}

// Logout tears down the session. The backend call is best effort: local
// state and cookies are cleared even when the network call fails, so the
// user is never trapped in a session they asked to leave.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.RLock()
	backend := m.backend
	m.mu.RUnlock()

	var netErr error
	if backend != nil {
		if err := backend.Logout(ctx); err != nil {
			netErr = err
			log.LogWarnWithFields("session", "Backend logout failed, clearing local session anyway", map[string]any{
				"error": err.Error(),
			})
		}
	}

	m.ClearLocal()

	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			log.LogWarnWithFields("session", "Cookie clear on logout failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return netErr
}

// ClearLocal drops the cached session without touching the backend. It is
// also the client's 401 hook: a rejected request invalidates local state
// immediately.
func (m *Manager) ClearLocal() {
	m.mu.Lock()
	m.gen++
	m.state = StateUnauthenticated
	m.user = nil
	m.cookie = cookies.Cookie{}
	m.mu.Unlock()
	log.LogDebugWithFields("session", "Local session cleared", nil)
}

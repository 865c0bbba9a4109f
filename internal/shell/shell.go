// Package shell is the view router: Splash, then the public site, with a hidden way into
// the admin view and an explicit way back out.
package shell

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"photostudio/internal/model"
)

type Mode int

const (
	Splash Mode = iota
	Public
	Admin
)

func (m Mode) String() string {
	switch m {
	case Splash:
		return "splash"
	case Public:
		return "public"
	case Admin:
		return "admin"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// AdminView is what admin mode shows.
type AdminView int

const (
	Login AdminView = iota
	Dashboard
)

var ErrInvalidTransition = errors.New("invalid transition")

type Machine struct {
	mu           sync.Mutex
	mode         Mode
	mounted      time.Time
	minSplash    time.Duration
	authResolved bool
}

// New starts in Splash at now.
func New(now time.Time, minSplash time.Duration) *Machine {
	return &Machine{mode: Splash, mounted: now, minSplash: minSplash}
}

func (m *Machine) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// ResolveAuth records that the session lookup finished.
func (m *Machine) ResolveAuth() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authResolved = true
}

// Tick leaves Splash once the minimum duration has elapsed and auth is resolved.
// It reports the mode after the tick.
func (m *Machine) Tick(now time.Time) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == Splash && m.authResolved && now.Sub(m.mounted) >= m.minSplash {
		m.mode = Public
	}
	return m.mode
}

// SplashRemaining is how long Splash still has to show at now, ignoring auth.
func (m *Machine) SplashRemaining(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Splash {
		return 0
	}
	if left := m.minSplash - now.Sub(m.mounted); left > 0 {
		return left
	}
	return 0
}

// OpenAdmin is the hidden gesture: Public -> Admin.
func (m *Machine) OpenAdmin() error {
	return m.transition(Public, Admin)
}

// ExitAdmin returns to Public. It does not sign out.
func (m *Machine) ExitAdmin() error {
	return m.transition(Admin, Public)
}

func (m *Machine) transition(from, to Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.mode, to)
	}
	m.mode = to
	return nil
}

// AdminViewFor picks the login form or the dashboard.
func AdminViewFor(user *model.User) AdminView {
	if user == nil {
		return Login
	}
	return Dashboard
}

// ModeForRequest maps a stateless HTTP request onto the machine: a first visit starts in
// Splash, later visits are Public, the /admin path is Admin.
func ModeForRequest(firstVisit, adminPath bool) Mode {
	switch {
	case adminPath:
		return Admin
	case firstVisit:
		return Splash
	default:
		return Public
	}
}

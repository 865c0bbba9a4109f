package authctx

import (
	"slices"
	"sync"
	"time"

	"photostudio/internal/auth"
	"photostudio/pkg/metrics"
)

// Tracker keeps the set of signed-in admins from auth state change events. The auth
// service is its only writer. Sessions that reach their expiry without a sign-out are
// pruned.
type Tracker struct {
	mu  sync.Mutex
	now func() time.Time
	// user id -> expiry of each live session; a zero expiry never lapses
	active map[string][]time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now, active: map[string][]time.Time{}}
}

func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Attach subscribes the tracker and returns the unsubscribe func.
func (t *Tracker) Attach(svc interface {
	OnAuthStateChange(fn func(auth.Event)) func()
}) func() {
	return svc.OnAuthStateChange(t.handle)
}

func (t *Tracker) handle(e auth.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := e.User.ID
	switch e.Kind {
	case auth.SignedIn:
		t.active[id] = append(t.active[id], e.ExpiresAt)
	case auth.SignedOut:
		sessions := t.active[id]
		if len(sessions) == 0 {
			break
		}
		i := slices.IndexFunc(sessions, func(exp time.Time) bool { return exp.Equal(e.ExpiresAt) })
		if i < 0 {
			i = 0
		}
		t.active[id] = slices.Delete(sessions, i, i+1)
	}
	t.pruneLocked()
}

func (t *Tracker) pruneLocked() {
	now := t.now()
	for id, sessions := range t.active {
		sessions = slices.DeleteFunc(sessions, func(exp time.Time) bool {
			return !exp.IsZero() && !now.Before(exp)
		})
		if len(sessions) == 0 {
			delete(t.active, id)
			continue
		}
		t.active[id] = sessions
	}
	metrics.AdminSessions.Set(float64(len(t.active)))
}

// Active is the number of distinct users with at least one live session.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()
	return len(t.active)
}

package shell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photostudio/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSplashWaitsForTimerAndAuth(t *testing.T) {
	m := New(t0, 2*time.Second)
	assert.Equal(t, Splash, m.Tick(t0.Add(3*time.Second)), "auth unresolved")

	m.ResolveAuth()
	assert.Equal(t, Public, m.Tick(t0.Add(3*time.Second)))

	m2 := New(t0, 2*time.Second)
	m2.ResolveAuth()
	assert.Equal(t, Splash, m2.Tick(t0.Add(time.Second)), "timer not elapsed")
	assert.Equal(t, time.Second, m2.SplashRemaining(t0.Add(time.Second)))
	assert.Equal(t, Public, m2.Tick(t0.Add(2*time.Second)))
	assert.Zero(t, m2.SplashRemaining(t0.Add(time.Second)))
}

func TestAdminRoundTrip(t *testing.T) {
	m := New(t0, 0)
	require.ErrorIs(t, m.OpenAdmin(), ErrInvalidTransition)
	assert.Equal(t, Splash, m.Mode())

	m.ResolveAuth()
	m.Tick(t0)
	require.NoError(t, m.OpenAdmin())
	assert.Equal(t, Admin, m.Mode())
	assert.ErrorIs(t, m.OpenAdmin(), ErrInvalidTransition)

	require.NoError(t, m.ExitAdmin())
	assert.Equal(t, Public, m.Mode())
	assert.ErrorIs(t, m.ExitAdmin(), ErrInvalidTransition)
}

func TestAdminViewFor(t *testing.T) {
	assert.Equal(t, Login, AdminViewFor(nil))
	assert.Equal(t, Dashboard, AdminViewFor(&model.User{ID: "u"}))
}

func TestModeForRequest(t *testing.T) {
	assert.Equal(t, Splash, ModeForRequest(true, false))
	assert.Equal(t, Public, ModeForRequest(false, false))
	assert.Equal(t, Admin, ModeForRequest(true, true))
	assert.Equal(t, "admin", Admin.String())
}

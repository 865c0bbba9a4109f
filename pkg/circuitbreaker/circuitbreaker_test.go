package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var errBoom = errors.New("boom")

func newBreaker(clock *manualClock) *CircuitBreaker {
	return NewCircuitBreaker(Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
		Now:                 clock.Now,
	})
}

func fail() error { return errBoom }
func ok() error   { return nil }

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := newBreaker(clock)

	require.ErrorIs(t, cb.Execute(fail), errBoom)
	require.ErrorIs(t, cb.Execute(fail), errBoom)

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.False(t, called)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	clock := &manualClock{t: time.Now()}
	cb := newBreaker(clock)

	_ = cb.Execute(fail)
	require.NoError(t, cb.Execute(ok))
	_ = cb.Execute(fail)

	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenProbeClosesOrReopens(t *testing.T) {
	clock := &manualClock{t: time.Now()}
	cb := newBreaker(clock)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	_ = cb.Execute(ok) // applies the open transition

	clock.Advance(time.Minute)
	require.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())

	clock.Advance(time.Minute)
	require.NoError(t, cb.Execute(ok))
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestReset(t *testing.T) {
	clock := &manualClock{t: time.Now()}
	cb := newBreaker(clock)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	_ = cb.Execute(ok)
	require.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Execute(ok))
}

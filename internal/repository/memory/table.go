// Package memory holds in-memory backend tables. They mirror the Postgres ordering and
// not-found semantics and are used by tests and by the "memory" database driver.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"photostudio/internal/backend"
)

// Faults lets tests make the next call of a table fail.
type Faults struct {
	mu   sync.Mutex
	next error
}

// FailNext makes the next table call return err.
func (f *Faults) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = err
}

func (f *Faults) take() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.next
	f.next = nil
	return err
}

// clock hands out strictly increasing timestamps so created_at ordering is total.
type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func (c *clock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

type accessor[T any] struct {
	id      func(T) string
	stamp   func(row *T, id string, created, updated time.Time)
	created func(T) time.Time
	columns map[string]func(a, b T) int
	prepare func(row *T)
}

type table[T any] struct {
	Faults

	mu    sync.RWMutex
	rows  []T
	acc   accessor[T]
	clock *clock
}

func newTable[T any](acc accessor[T], now func() time.Time) *table[T] {
	if now == nil {
		now = time.Now
	}
	return &table[T]{acc: acc, clock: &clock{now: now}}
}

func (t *table[T]) Select(ctx context.Context, order backend.Order) ([]T, error) {
	if err := t.take(); err != nil {
		return nil, err
	}
	compare, ok := t.acc.columns[order.Column]
	if !ok {
		return nil, backend.CheckOrder(order, nil)
	}

	t.mu.RLock()
	out := slices.Clone(t.rows)
	t.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b T) int {
		c := compare(a, b)
		if !order.Ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return t.acc.created(a).Compare(t.acc.created(b))
	})
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (t *table[T]) Insert(ctx context.Context, row T) (T, error) {
	if err := t.take(); err != nil {
		var zero T
		return zero, err
	}
	if t.acc.prepare != nil {
		t.acc.prepare(&row)
	}
	now := t.clock.tick()
	t.acc.stamp(&row, uuid.NewString(), now, now)

	t.mu.Lock()
	t.rows = append(t.rows, row)
	t.mu.Unlock()
	return row, nil
}

func (t *table[T]) Update(ctx context.Context, id string, row T) (T, error) {
	var zero T
	if err := t.take(); err != nil {
		return zero, err
	}
	if t.acc.prepare != nil {
		t.acc.prepare(&row)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.rows {
		if t.acc.id(existing) != id {
			continue
		}
		t.acc.stamp(&row, id, t.acc.created(existing), t.clock.tick())
		t.rows[i] = row
		return row, nil
	}
	return zero, backend.ErrNotFound
}

func (t *table[T]) Delete(ctx context.Context, id string) error {
	if err := t.take(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.rows {
		if t.acc.id(existing) == id {
			t.rows = slices.Delete(t.rows, i, i+1)
			return nil
		}
	}
	return backend.ErrNotFound
}

// Len reports the number of stored rows.
func (t *table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func by[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

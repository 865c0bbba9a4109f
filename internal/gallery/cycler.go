// Package gallery tracks the current slide of every project slideshow.
package gallery

import "sync"

// Cycler holds one slide index per slideshow id.
type Cycler struct {
	mu  sync.Mutex
	pos map[string]int
}

func NewCycler() *Cycler {
	return &Cycler{pos: map[string]int{}}
}

// Index is the current slide of id, 0 when unseen.
func (c *Cycler) Index(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos[id]
}

// Set moves id to i, wrapped into [0, n).
func (c *Cycler) Set(id string, i, n int) int {
	return c.move(id, n, func(int) int { return i })
}

func (c *Cycler) Next(id string, n int) int {
	return c.move(id, n, func(i int) int { return i + 1 })
}

func (c *Cycler) Prev(id string, n int) int {
	return c.move(id, n, func(i int) int { return i - 1 })
}

func (c *Cycler) move(id string, n int, step func(int) int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		c.pos[id] = 0
		return 0
	}
	i := Wrap(step(c.pos[id]), n)
	c.pos[id] = i
	return i
}

// Wrap maps i into [0, n) for n > 0.
func Wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

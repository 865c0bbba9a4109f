// Package reveal produces the character-by-character reveal of a text.
package reveal

import (
	"context"
	"time"
)

// Typewriter emits growing rune prefixes of the latest text received on texts, one more
// rune every interval, starting from the empty string. A different text restarts the
// reveal from empty. The output closes when ctx is done, or when texts is closed and the
// current reveal has completed.
func Typewriter(ctx context.Context, texts <-chan string, interval time.Duration) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		var (
			runes   []rune
			shown   int
			current string
			active  bool
			ticker  *time.Ticker
			tick    <-chan time.Time
		)
		stop := func() {
			if ticker != nil {
				ticker.Stop()
				ticker, tick = nil, nil
			}
		}
		defer stop()

		emit := func(s string) bool {
			select {
			case out <- s:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case text, ok := <-texts:
				if !ok {
					texts = nil
					if !active || shown >= len(runes) {
						return
					}
					continue
				}
				if active && text == current {
					continue
				}
				current, runes, shown, active = text, []rune(text), 0, true
				stop()
				if !emit("") {
					return
				}
				if len(runes) == 0 {
					if texts == nil {
						return
					}
					continue
				}
				ticker = time.NewTicker(interval)
				tick = ticker.C
			case <-tick:
				shown++
				if !emit(string(runes[:shown])) {
					return
				}
				if shown >= len(runes) {
					stop()
					if texts == nil {
						return
					}
				}
			}
		}
	}()
	return out
}

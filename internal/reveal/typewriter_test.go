package reveal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, out <-chan string) []string {
	t.Helper()
	var got []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, s)
		case <-timeout:
			t.Fatal("typewriter did not finish")
		}
	}
}

func TestRevealsFullTextRuneByRune(t *testing.T) {
	texts := make(chan string, 1)
	texts <- "héllo"
	close(texts)

	got := collect(t, Typewriter(context.Background(), texts, time.Millisecond))
	assert.Equal(t, []string{"", "h", "hé", "hél", "héll", "héllo"}, got)
}

func TestRestartsWhenTextChanges(t *testing.T) {
	texts := make(chan string, 1)
	out := Typewriter(context.Background(), texts, time.Millisecond)

	texts <- "abc"
	require.Equal(t, "", <-out)
	require.Equal(t, "a", <-out)

	texts <- "xy"
	close(texts)
	rest := collect(t, out)

	// after the change the reveal starts over from empty and completes the new text
	start := -1
	for i, s := range rest {
		if s == "" {
			start = i
		}
	}
	require.NotEqual(t, -1, start)
	assert.Equal(t, []string{"", "x", "xy"}, rest[start:])
}

func TestSameTextDoesNotRestart(t *testing.T) {
	texts := make(chan string, 2)
	texts <- "ab"
	texts <- "ab"
	close(texts)

	got := collect(t, Typewriter(context.Background(), texts, time.Millisecond))
	assert.Equal(t, []string{"", "a", "ab"}, got)
}

func TestEmptyTextAndCancel(t *testing.T) {
	texts := make(chan string, 1)
	texts <- ""
	close(texts)
	assert.Equal(t, []string{""}, collect(t, Typewriter(context.Background(), texts, time.Millisecond)))

	ctx, cancel := context.WithCancel(context.Background())
	open := make(chan string)
	out := Typewriter(ctx, open, time.Hour)
	cancel()
	assert.Empty(t, collect(t, out))
}

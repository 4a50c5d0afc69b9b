// Package testutil provides helpers shared by applog's tests for code that
// hands work to goroutines.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Common test timeout constants.
const (
	// DefaultTestTimeout bounds waits for work that is expected to finish.
	DefaultTestTimeout = 5 * time.Second

	// BlockedCheckWindow is how long RequireBlocked watches a channel.
	BlockedCheckWindow = 100 * time.Millisecond
)

// Go runs fn in a goroutine and returns a channel closed when fn returns.
func Go(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return done
}

// WaitForChannel waits for a signal on the channel or fails after timeout.
func WaitForChannel(tb testing.TB, ch <-chan struct{}, timeout time.Duration, msg string) {
	tb.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		require.Fail(tb, msg)
	}
}

// RequireBlocked fails if the channel is signalled within window.
func RequireBlocked(tb testing.TB, ch <-chan struct{}, window time.Duration, msg string) {
	tb.Helper()
	select {
	case <-ch:
		require.Fail(tb, msg)
	case <-time.After(window):
	}
}

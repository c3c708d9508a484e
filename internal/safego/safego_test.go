package safego

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Error(msg)
	}
}

func TestGo_RunsFunction(t *testing.T) {
	done := make(chan struct{})

	Go(func() { close(done) })

	waitFor(t, done, "goroutine did not run within timeout")
}

func TestGo_RecoversPanic(t *testing.T) {
	done := make(chan struct{})

	// Must not crash the test process.
	Go(func() {
		defer close(done)
		panic("intentional panic in test")
	})

	waitFor(t, done, "goroutine did not complete within timeout after panic")
}

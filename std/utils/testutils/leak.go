package testutils

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks fails t at cleanup if goroutines started by the test
// are still running.
func VerifyNoLeaks(t *testing.T) {
	ignore := goleak.IgnoreCurrent()
	t.Cleanup(func() {
		goleak.VerifyNone(t, ignore)
	})
}

package lockfree

import "runtime"

// spinBudget is the number of pure busy iterations before a spinner
// starts yielding the processor to other goroutines.
const spinBudget = 64

// spinner is a busy-wait backoff. It never parks the goroutine on an
// OS primitive; after spinBudget iterations it yields with Gosched.
type spinner struct {
	n int
}

func (s *spinner) once() {
	if s.n < spinBudget {
		s.n++
		return
	}
	runtime.Gosched()
}

package autograd

import "sync/atomic"

// Gradient tracking is ambient, process-wide state. Go has no
// goroutine-local storage, so unlike a thread-local flag the mode is shared
// by all goroutines; callers that record concurrently under different modes
// must coordinate externally.
var gradEnabled atomic.Bool

func init() {
	gradEnabled.Store(true)
}

// GradEnabled reports whether operations are currently being recorded.
func GradEnabled() bool {
	return gradEnabled.Load()
}

// SetGradEnabled sets the gradient tracking mode and returns a restore
// function for the previous value. The restore function runs on every exit
// path when deferred, including panics:
//
//	defer autograd.SetGradEnabled(false)()
//	// ... inference-only code, nothing is recorded ...
func SetGradEnabled(enabled bool) func() {
	prev := gradEnabled.Swap(enabled)
	return func() {
		gradEnabled.Store(prev)
	}
}

// NoGrad disables gradient tracking and returns the restore function.
// Shorthand for SetGradEnabled(false).
func NoGrad() func() {
	return SetGradEnabled(false)
}

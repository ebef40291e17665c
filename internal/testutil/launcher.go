package testutil

import "sync"

// Launcher holds solve calls instead of starting goroutines, so tests
// decide when each call runs and in which order calls complete.
//
// Thread-safety: safe for concurrent use.
type Launcher struct {
	mu      sync.Mutex
	pending []func()
	inline  bool
}

// NewLauncher returns a launcher that holds calls until released.
func NewLauncher() *Launcher { return &Launcher{} }

// NewInlineLauncher returns a launcher that runs each call immediately on
// the caller's goroutine.
func NewInlineLauncher() *Launcher { return &Launcher{inline: true} }

// Launch runs or holds fn. It matches the engine's launcher signature.
func (l *Launcher) Launch(fn func()) {
	if l.inline {
		fn()
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, fn)
}

// Pending returns how many calls are held.
func (l *Launcher) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Release runs the held call at index i (0 is the oldest) and reports
// whether there was one.
func (l *Launcher) Release(i int) bool {
	l.mu.Lock()
	if i < 0 || i >= len(l.pending) {
		l.mu.Unlock()
		return false
	}
	fn := l.pending[i]
	l.pending = append(l.pending[:i], l.pending[i+1:]...)
	l.mu.Unlock()

	fn()
	return true
}

// ReleaseAll runs every held call, oldest first.
func (l *Launcher) ReleaseAll() int {
	n := 0
	for l.Release(0) {
		n++
	}
	return n
}

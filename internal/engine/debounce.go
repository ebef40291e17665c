package engine

import "time"

// DefaultQuietPeriod is how long edits must pause before a solve fires.
const DefaultQuietPeriod = 500 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a single-shot timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc wraps time.AfterFunc.
func RealAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// debouncer collapses bursts of edits into one solve.
//
// States: idle -> armed (timer pending) -> firing (solve being issued) -> idle.
// Every schedule call stops the pending timer and arms a new one with a
// higher generation; a timer event whose generation is not current is a
// leftover from a stopped timer and is ignored.
//
// Only the Run loop touches a debouncer.
type debouncer struct {
	quiet time.Duration
	after AfterFunc
	post  func(gen uint64)

	state SchedulerState
	timer Timer
	gen   uint64
}

func newDebouncer(quiet time.Duration, after AfterFunc, post func(gen uint64)) *debouncer {
	return &debouncer{quiet: quiet, after: after, post: post}
}

// schedule (re)arms the timer.
func (d *debouncer) schedule() {
	d.stop()
	d.gen++
	gen := d.gen
	d.timer = d.after(d.quiet, func() { d.post(gen) })
	d.state = SchedulerArmed
}

// fire reports whether a timer event for gen should run a solve, and if so
// moves to firing.
func (d *debouncer) fire(gen uint64) bool {
	if d.state != SchedulerArmed || gen != d.gen {
		return false
	}
	d.timer = nil
	d.state = SchedulerFiring
	return true
}

// bypass stops any pending timer and moves to firing for an immediate solve.
func (d *debouncer) bypass() {
	d.stop()
	d.gen++
	d.state = SchedulerFiring
}

// done returns to idle after a solve was issued or skipped.
func (d *debouncer) done() {
	d.state = SchedulerIdle
}

func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// armed reports whether a solve is pending.
func (d *debouncer) armed() bool { return d.state == SchedulerArmed }

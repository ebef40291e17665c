package engine

import "sync/atomic"

// Clock hands out solve sequence numbers.
//
// Each solve request takes the next number. A response is applied only if
// its number is above the last applied one, so a slow answer for an old
// formula never replaces the answer for a newer one. Wall time plays no part.
//
// Only the Run loop calls Next; Current may be read from anywhere.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first request is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first request is last+1, so numbers keep
// increasing across runs that share a solve log.
func NewClockAt(last int64) *Clock {
	c := &Clock{}
	c.seq.Store(last)
	return c
}

// Next issues a sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current is the last number issued, 0 before the first request.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

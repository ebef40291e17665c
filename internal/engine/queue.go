package engine

import (
	"sync"
	"time"

	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/umf"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeCommand carries a user command.
	EventTypeCommand EventType = iota + 1
	// EventTypeTimer reports that the debounce timer fired.
	EventTypeTimer
	// EventTypeSettled carries the outcome of a solve request.
	EventTypeSettled
	// EventTypeDeferred runs a callback scheduled on an earlier turn.
	EventTypeDeferred
)

// Event is one unit of work for the Run loop.
type Event struct {
	Type EventType

	Command *Command
	// Generation identifies which arming of the debounce timer fired.
	Generation uint64
	Settled    *settled
	Deferred   func()

	// reply, when set, receives the command's result.
	reply chan error
}

// settled is the result of one solve request.
type settled struct {
	seq        int64
	token      string
	umf        *umf.UMF
	candidates []solution.Candidate
	err        error
	duration   time.Duration
}

// eventQueue is the loop's inbox. Timer callbacks, solver goroutines and
// watchers push into it and never block; only Run pops. ready holds at most
// one pending wake-up and is closed on shutdown.
type eventQueue struct {
	mu      sync.Mutex
	pending []Event
	done    bool
	ready   chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

// Enqueue appends e and wakes the loop. It reports false once the queue has
// been closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done {
		return false
	}
	q.pending = append(q.pending, e)
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the oldest event, if any.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Event{}, false
	}
	head := q.pending[0]
	// Clear the slot so a drained backing array holds no candidates.
	q.pending[0] = Event{}
	q.pending = q.pending[1:]
	if len(q.pending) == 0 {
		q.pending = nil
	}
	return head, true
}

// Wait fires after an Enqueue, or forever once the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} { return q.ready }

func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close rejects further events. Queued events can still be drained.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.done {
		q.done = true
		close(q.ready)
	}
}

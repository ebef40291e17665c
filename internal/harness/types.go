package harness

// Trace event names that are not command kinds.
const (
	EventRequest = "request"
	EventSkipped = "skipped"
	EventSettled = "settled"
)

// TraceEvent is one entry of a scenario trace: a command that was sent, a
// solve the engine issued or skipped, or a solve that settled.
type TraceEvent struct {
	// Event is the command kind ("set_value", ...) or one of the Event*
	// constants.
	Event string         `json:"event"`
	Args  map[string]any `json:"args,omitempty"`
	// Seq is the engine clock value of a solve; zero for commands.
	Seq int64 `json:"seq,omitempty"`
	// AtMS is virtual time since the scenario started.
	AtMS int64 `json:"at_ms"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains commands, requests and settlements in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event string, args map[string]any, seq, atMS int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Event: event,
		Args:  args,
		Seq:   seq,
		AtMS:  atMS,
	})
}

// Count returns how many trace events are named event.
func (r *Result) Count(event string) int {
	n := 0
	for _, e := range r.Trace {
		if e.Event == event {
			n++
		}
	}
	return n
}

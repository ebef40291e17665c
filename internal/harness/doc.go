// Package harness runs YAML scenarios against the recipe composition engine.
//
// A scenario seeds the stored formula, scripts the solving service, then
// replays steps: engine commands, virtual time, and release of held solve
// calls in any order. The harness drives a real engine.Engine through
// Drain, so timer expiry and solve completions are processed exactly as
// the Run loop would process them, only deterministically.
//
// Every scenario produces a trace of commands, issued or skipped solves and
// settled solves with their engine sequence numbers and virtual times.
// Traces are compared against golden files; steps carry expect clauses on
// the engine snapshot; assertions check the trace and the solve log.
//
// Example:
//
//	name: debounce_burst
//	description: three quick edits produce one solve
//	steps:
//	  - do: set_value
//	    row: SiO2
//	    value: "3.2"
//	  - advance: 500ms
//	    expect:
//	      requests: 2
//	assertions:
//	  - type: trace_count
//	    event: request
//	    count: 2
package harness

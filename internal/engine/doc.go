// Package engine implements the glaze recipe composition state engine.
//
// The engine owns the formula being edited and everything derived from it:
// the rows, the target UMF, the ranked solutions with their comparisons and
// the busy flag. A render surface sends commands and draws the snapshots the
// engine publishes after each event.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All state changes happen on one goroutine. User commands, debounce timer
// expiry, solve completions, deferred focus restoration and outside edits
// of the persisted formula are all events on one FIFO queue.
//
// Event Processing Flow:
// 1. A row command is validated (oxide exclusivity) and applied
// 2. The target UMF is rebuilt and persisted inside the same event
// 3. The debouncer is re-armed; bursts of edits collapse into one solve
// 4. The timer event issues a solve stamped with the next clock value
// 5. The settled event ranks the candidates and compares them to the target
//
// Solve calls run off the loop and report back as events, so the loop
// never blocks on the network.
//
// CRITICAL PATTERNS:
//
// Sequence Guard:
// Every solve request is stamped with a monotonic seq from Clock.Next().
// A response whose seq is not newer than the last applied one is dropped.
// The last request wins regardless of arrival order.
//
// Deferred Focus:
// Writing to an observable channel captures the focused element first and
// restores it on a later loop turn, never inside the write.
package engine

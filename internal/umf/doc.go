// Package umf models the target formula (unity molecular formula) and the
// editable rows it is derived from.
//
// A UMF maps oxide symbols to strictly positive ratios. Rows are the data side
// of the editor: each holds a group, an optional oxide and the raw text of its
// value field. Rows enforces that no oxide is selected on two rows at once and
// Rebuild turns the current rows into the UMF that the rest of the engine
// consumes.
package umf

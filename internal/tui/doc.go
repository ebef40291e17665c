// Package tui is the terminal render surface of the recipe engine.
//
// The Model draws the formula rows, the ranked solutions and the comparison
// of the selected solution against the target. It holds no formula state of
// its own: key presses become engine commands and the engine's snapshots,
// delivered through a Bridge, drive every redraw. Focus restored by the
// engine after a persisted write moves the cursor back to the edited row.
package tui

package persist

// Focus identifies the focused input and its text selection.
type Focus struct {
	ElementID      string `json:"element_id"`
	SelectionStart int    `json:"selection_start"`
	SelectionEnd   int    `json:"selection_end"`
}

// FocusKeeper is implemented by whatever owns input focus.
type FocusKeeper interface {
	// CaptureFocus returns the focused element, if any.
	CaptureFocus() (Focus, bool)
	// RestoreFocus focuses the element again and reports whether it still
	// existed.
	RestoreFocus(f Focus) bool
}

// Deferrer schedules fn to run on a later turn of the caller's loop, never
// synchronously.
type Deferrer func(fn func())

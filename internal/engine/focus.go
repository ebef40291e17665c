package engine

import (
	"log/slog"

	"github.com/roach88/glaze/internal/persist"
)

// CaptureFocus implements persist.FocusKeeper.
func (e *Engine) CaptureFocus() (persist.Focus, bool) {
	return e.focus, e.hasFocus
}

// RestoreFocus implements persist.FocusKeeper. It succeeds only while the
// row behind the element still exists. A capture that no longer matches the
// current focus is outdated: the user moved, blurred or typed since, and the
// newer focus stands.
func (e *Engine) RestoreFocus(f persist.Focus) bool {
	id, ok := ElementRow(f.ElementID)
	if !ok {
		return false
	}
	if _, exists := e.rows.Get(id); !exists {
		return false
	}
	if !e.hasFocus || e.focus != f {
		slog.Debug("skipping outdated focus restore", "element", f.ElementID)
		return true
	}
	e.focusEpoch++
	return true
}

// later defers fn to a later loop turn.
func (e *Engine) later(fn func()) {
	e.queue.Enqueue(Event{Type: EventTypeDeferred, Deferred: fn})
}

func (e *Engine) dropStaleFocus() {
	if !e.hasFocus {
		return
	}
	if id, ok := ElementRow(e.focus.ElementID); ok {
		if _, exists := e.rows.Get(id); exists {
			return
		}
	}
	e.focus, e.hasFocus = persist.Focus{}, false
}

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/glaze/internal/engine"
)

// Bridge hands snapshots from the engine loop to a tea.Program without
// blocking the loop. Only the newest undelivered snapshot is kept.
type Bridge struct {
	ch chan engine.Snapshot
}

// NewBridge creates a Bridge.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan engine.Snapshot, 1)}
}

// Publish replaces any pending snapshot with s. Pass it to
// engine.Subscribe; it must only be called from the engine loop.
func (b *Bridge) Publish(s engine.Snapshot) {
	for {
		select {
		case b.ch <- s:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// Forward delivers snapshots to send until ctx is cancelled.
func (b *Bridge) Forward(ctx context.Context, send func(tea.Msg)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-b.ch:
			send(SnapshotMsg{Snapshot: s})
		}
	}
}

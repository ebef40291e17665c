package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/glaze/internal/umf"
)

// Adapter saves and restores the UMF through one channel.
type Adapter struct {
	codec   Codec
	channel Channel
	focus   FocusKeeper
	later   Deferrer

	current    string
	hasCurrent bool
	// written holds our most recent tokens, newest last, so a watcher that
	// reads the channel late does not mistake an older write for an outside
	// change.
	written []string
}

// echoWindow is how many of our own writes Observe still recognises.
const echoWindow = 16

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithFocusKeeper enables focus preservation on observable channels. later
// must schedule restoration on a later loop turn.
func WithFocusKeeper(k FocusKeeper, later Deferrer) AdapterOption {
	return func(a *Adapter) {
		a.focus = k
		a.later = later
	}
}

// NewAdapter pairs codec with channel.
func NewAdapter(codec Codec, channel Channel, opts ...AdapterOption) *Adapter {
	a := &Adapter{codec: codec, channel: channel}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Channel returns the underlying channel.
func (a *Adapter) Channel() Channel { return a.channel }

// Token returns the last token read or written.
func (a *Adapter) Token() (string, bool) { return a.current, a.hasCurrent }

// Load reads the stored UMF. It returns (nil, nil) when nothing is stored and
// a *DecodeError when the stored token is malformed; in both cases the caller
// keeps its built-in default.
func (a *Adapter) Load(ctx context.Context) (*umf.UMF, error) {
	token, ok, err := a.channel.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load umf: %w", err)
	}
	if !ok {
		return nil, nil
	}
	a.current, a.hasCurrent = token, true
	u, err := a.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Save persists u. It reports false without touching the channel when the
// encoded token equals the one already stored.
func (a *Adapter) Save(ctx context.Context, u *umf.UMF) (bool, error) {
	token, err := a.codec.Encode(u)
	if err != nil {
		return false, err
	}
	if a.hasCurrent && token == a.current {
		return false, nil
	}

	var (
		focus    Focus
		hasFocus bool
	)
	if a.channel.Observable() && a.focus != nil {
		focus, hasFocus = a.focus.CaptureFocus()
	}

	if err := a.channel.Write(ctx, token); err != nil {
		return false, fmt.Errorf("save umf: %w", err)
	}
	a.current, a.hasCurrent = token, true
	a.remember(token)

	if hasFocus && a.later != nil {
		keeper := a.focus
		a.later(func() {
			if !keeper.RestoreFocus(focus) {
				slog.Debug("focused element vanished before restore", "element", focus.ElementID)
			}
		})
	}
	return true, nil
}

// Observe handles a token seen on the channel after an outside change. It
// returns (nil, false, nil) for the current token and for any of our recent
// writes.
func (a *Adapter) Observe(token string) (*umf.UMF, bool, error) {
	if (a.hasCurrent && token == a.current) || slices.Contains(a.written, token) {
		return nil, false, nil
	}
	u, err := a.codec.Decode(token)
	if err != nil {
		return nil, false, err
	}
	a.current, a.hasCurrent = token, true
	// The outside edit is now the baseline; older writes of ours can
	// legitimately reappear.
	a.written = a.written[:0]
	return u, true, nil
}

func (a *Adapter) remember(token string) {
	if len(a.written) == echoWindow {
		a.written = slices.Delete(a.written, 0, 1)
	}
	a.written = append(a.written, token)
}

// IsDecodeError reports whether err is a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

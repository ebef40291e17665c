package persist

import (
	"context"
	"fmt"
)

// Strategy names a persistence channel.
type Strategy string

const (
	StrategyFragment Strategy = "fragment"
	StrategyLocal    Strategy = "local"
	StrategyNone     Strategy = "none"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFragment, StrategyLocal, StrategyNone:
		return Strategy(s), nil
	case "":
		return StrategyFragment, nil
	}
	return "", fmt.Errorf("unknown persistence strategy %q", s)
}

// Channel is where tokens live.
type Channel interface {
	// Read returns the current token; ok is false when nothing is stored.
	Read(ctx context.Context) (token string, ok bool, err error)
	// Write replaces the stored token.
	Write(ctx context.Context, token string) error
	// Observable reports whether other parties can see and change the token
	// (and therefore whether a write can disturb the focused input).
	Observable() bool
}

// KV is the subset of the store used by LocalChannel.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// LocalKey is the fixed key the local strategy stores the UMF under.
const LocalKey = "glaze.umf"

// LocalChannel keeps the token in a private key/value store.
type LocalChannel struct {
	kv  KV
	key string
}

// NewLocalChannel returns a channel over kv using LocalKey.
func NewLocalChannel(kv KV) *LocalChannel {
	return &LocalChannel{kv: kv, key: LocalKey}
}

// Read implements Channel.
func (c *LocalChannel) Read(ctx context.Context) (string, bool, error) {
	return c.kv.Get(ctx, c.key)
}

// Write implements Channel.
func (c *LocalChannel) Write(ctx context.Context, token string) error {
	return c.kv.Put(ctx, c.key, token)
}

// Observable implements Channel.
func (c *LocalChannel) Observable() bool { return false }

// NoneChannel stores nothing.
type NoneChannel struct{}

// Read implements Channel.
func (NoneChannel) Read(context.Context) (string, bool, error) { return "", false, nil }

// Write implements Channel.
func (NoneChannel) Write(context.Context, string) error { return nil }

// Observable implements Channel.
func (NoneChannel) Observable() bool { return false }

package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates request tokens that correlate a solve request
// with its log row and the service's own logs.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens sort by
// creation time in the solve log.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens, then numbered fallbacks.
//
// Tests can provide a known sequence of tokens and compare exact traces.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedGenerator("req-a", "req-b")
//	gen.Generate() // "req-a"
//	gen.Generate() // "req-b"
//	gen.Generate() // "req-3"
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token. Once the list is used up
// it returns "req-N" where N counts every call so far.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if g.idx <= len(g.tokens) {
		return g.tokens[g.idx-1]
	}
	return fmt.Sprintf("req-%d", g.idx)
}

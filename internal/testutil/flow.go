package testutil

// FixedTokenGenerator generates the same request token every time.
//
// Scenarios set it in YAML so every solve they log carries the same value:
//
//	request_token: "test-req-0001"
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a new fixed token generator.
// If token is empty, Generate() returns "test-req-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-req-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements engine.TokenGenerator interface.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

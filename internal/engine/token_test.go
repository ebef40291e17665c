package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b, "v7 tokens sort by creation time")
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("req-a", "req-b")
	assert.Equal(t, "req-a", g.Generate())
	assert.Equal(t, "req-b", g.Generate())
	assert.Equal(t, "req-3", g.Generate())
}

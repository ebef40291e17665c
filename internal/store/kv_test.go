package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKV_GetMissing(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.Get(context.Background(), "glaze.umf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_PutOverwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "glaze.umf", `{"SiO2":3}`))
	require.NoError(t, s.Put(ctx, "glaze.umf", `{"SiO2":4}`))

	v, ok, err := s.Get(ctx, "glaze.umf")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"SiO2":4}`, v)
}

func TestKV_Remove(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", "v"))
	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

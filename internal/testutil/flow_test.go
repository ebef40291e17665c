package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/solver"
	"github.com/roach88/glaze/internal/umf"
)

func TestFixedTokenGenerator(t *testing.T) {
	gen := NewFixedTokenGenerator("test-req-123")
	assert.Equal(t, "test-req-123", gen.Generate())
	assert.Equal(t, "test-req-123", gen.Generate())

	assert.Equal(t, "test-req-default", NewFixedTokenGenerator("").Generate())
}

func TestLauncher_HoldsAndReleasesOutOfOrder(t *testing.T) {
	l := NewLauncher()
	var ran []int
	for i := 1; i <= 3; i++ {
		l.Launch(func() { ran = append(ran, i) })
	}
	assert.Empty(t, ran)
	require.Equal(t, 3, l.Pending())

	require.True(t, l.Release(2))
	assert.Equal(t, 2, l.ReleaseAll())
	assert.Equal(t, []int{3, 1, 2}, ran)
	assert.False(t, l.Release(0))
}

func TestLauncher_Inline(t *testing.T) {
	l := NewInlineLauncher()
	ran := false
	l.Launch(func() { ran = true })
	assert.True(t, ran)
	assert.Equal(t, 0, l.Pending())
}

func TestFakeSolver(t *testing.T) {
	f := NewFakeSolver(solution.Candidate{Error: 0.1, MaterialsCount: 2})
	ctx := context.Background()

	cands, err := f.Solve(ctx, solver.Request{UMF: umf.FromMap(map[string]float64{"SiO2": 3})})
	require.NoError(t, err)
	assert.Len(t, cands, 1)

	f.Respond = func(solver.Request) ([]solution.Candidate, error) {
		return nil, errors.New("boom")
	}
	_, err = f.Solve(ctx, solver.Request{})
	require.Error(t, err)
	assert.Equal(t, 2, f.Calls())

	reg, err := f.MolarMasses(ctx)
	require.NoError(t, err)
	assert.True(t, reg.Has("SiO2"))
}

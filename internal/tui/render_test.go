package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glaze/internal/engine"
	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/umf"
)

func en() *status.Printer { return status.NewPrinter(status.English) }

func TestDisplayOrder(t *testing.T) {
	rows := []umf.Row{
		{ID: 1, Group: oxide.GroupRO2, Oxide: "SiO2"},
		{ID: 2, Group: oxide.GroupR2ORO, Oxide: "CaO"},
		{ID: 3, Group: oxide.GroupR2O3, Oxide: "Al2O3"},
		{ID: 4, Group: oxide.GroupR2ORO, Oxide: "K2O"},
	}

	var ids []int
	for _, r := range DisplayOrder(rows) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{2, 4, 3, 1}, ids)
}

func TestRenderForm(t *testing.T) {
	snap := engine.Snapshot{
		Rows: []umf.Row{
			{ID: 1, Group: oxide.GroupR2ORO, Oxide: "K2O", Value: "0.3"},
			{ID: 2, Group: oxide.GroupR2ORO, Oxide: "CaO", Value: "0.7"},
			{ID: 3, Group: oxide.GroupR2O3, Value: "0"},
			{ID: 4, Group: oxide.GroupRO2, Oxide: "SiO2", Value: "3"},
		},
		Divider:    1,
		HasDivider: true,
	}

	out := RenderForm(snap, FormView{Cursor: 1}, PlainStyles(), en())
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 8)
	assert.Equal(t, "R₂O/RO", lines[0])
	assert.Equal(t, "  K₂O      0.3", lines[1])
	assert.Equal(t, "  "+dividerLine, lines[2])
	assert.Equal(t, "› CaO      0.7", lines[3])
	assert.Equal(t, "R₂O₃", lines[4])
	assert.Equal(t, "  Select oxide 0", lines[5])
	assert.Equal(t, "RO₂", lines[6])
	assert.Equal(t, "  SiO₂     3", lines[7])
}

func TestRenderForm_EditingReplacesValue(t *testing.T) {
	snap := engine.Snapshot{Rows: []umf.Row{{ID: 1, Group: oxide.GroupR2ORO, Oxide: "K2O", Value: "0.3"}}}

	out := RenderForm(snap, FormView{Cursor: 0, Edit: true, Input: "0.35"}, PlainStyles(), en())

	assert.Contains(t, out, "› K₂O      0.35")
}

func TestRenderForm_NoDivider(t *testing.T) {
	snap := engine.Snapshot{Rows: []umf.Row{{ID: 1, Group: oxide.GroupR2ORO, Oxide: "K2O", Value: "0.3"}}}

	out := RenderForm(snap, FormView{Cursor: -1}, PlainStyles(), en())

	assert.NotContains(t, out, dividerLine)
}

func TestFormatDiff(t *testing.T) {
	tests := []struct {
		name string
		diff solution.Diff
		want string
	}{
		{
			name: "within tolerance",
			diff: solution.Diff{Oxide: "SiO2", Kind: solution.KindLow, Value: 3.0, Target: 3.005, Delta: 0.005},
			want: "SiO₂" + strings.Repeat(" ", 7) + "3.000 /   3.005  (0.005)",
		},
		{
			name: "extra",
			diff: solution.Diff{Oxide: "TiO2", Kind: solution.KindExtra, Value: 0.02},
			want: "TiO₂" + strings.Repeat(" ", 7) + "0.020 /" + strings.Repeat(" ", 7) + "-  !",
		},
		{
			name: "missing",
			diff: solution.Diff{Oxide: "Li2O", Kind: solution.KindMissing, Value: 0.1, Target: 0.1},
			want: "Li₂O" + strings.Repeat(" ", 11) + "- /   0.100  ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDiff(tt.diff))
		})
	}
}

func TestRenderSolution(t *testing.T) {
	target := umf.New()
	target.Set("SiO2", 3)
	cand := umf.New()
	cand.Set("SiO2", 3.2)
	cand.Set("TiO2", 0.02)
	sol := engine.Solution{
		Candidate: solution.Candidate{
			Recipe:         map[string]float64{"Whiting": 20, "Silica": 40, "Custer Feldspar": 40},
			Error:          0.005,
			MaterialsCount: 3,
			RecipeUMF:      cand,
		},
		Comparison: solution.Compare(cand, target),
	}

	t.Run("collapsed", func(t *testing.T) {
		out := RenderSolution(0, sol, false, nil, PlainStyles(), en())

		assert.Contains(t, out, "Solution #1 (3 materials)")
		assert.Contains(t, out, "Error: 0.50%")
		assert.NotContains(t, out, "Difference from target UMF:")

		feldspar := strings.Index(out, "Custer Feldspar")
		silica := strings.Index(out, "Silica")
		whiting := strings.Index(out, "Whiting")
		assert.True(t, feldspar < silica && silica < whiting, "materials largest share first, ties by name")
		assert.Contains(t, out, "40.00%")
	})

	t.Run("expanded", func(t *testing.T) {
		out := RenderSolution(1, sol, true, nil, PlainStyles(), en())

		assert.Contains(t, out, "Solution #2 (3 materials)")
		assert.Contains(t, out, "Difference from target UMF:")
		assert.Contains(t, out, "RO₂")
		assert.Contains(t, out, "  !")
	})
}

func TestRenderSolutions_Empty(t *testing.T) {
	assert.Empty(t, RenderSolutions(engine.Snapshot{}, 0, PlainStyles(), en()))
}

func TestRenderSolutions_Russian(t *testing.T) {
	snap := engine.Snapshot{Solutions: []engine.Solution{{
		Candidate: solution.Candidate{Recipe: map[string]float64{"Silica": 100}, MaterialsCount: 1, Error: 0.2},
	}}}

	out := RenderSolutions(snap, -1, PlainStyles(), status.NewPrinter(status.Russian))

	assert.Contains(t, out, "Решение #1")
}

package solution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/umf"
)

func TestCompare_Classification(t *testing.T) {
	target := umf.FromMap(map[string]float64{"SiO2": 3.0})
	tests := []struct {
		name      string
		candidate map[string]float64
		oxide     string
		want      Kind
		value     float64
	}{
		{"low", map[string]float64{"SiO2": 3.005}, "SiO2", KindLow, 3.005},
		{"medium", map[string]float64{"SiO2": 3.05}, "SiO2", KindMedium, 3.05},
		{"high", map[string]float64{"SiO2": 3.2}, "SiO2", KindHigh, 3.2},
		{"missing carries target", map[string]float64{}, "SiO2", KindMissing, 3.0},
		{"extra", map[string]float64{"SiO2": 3.0, "Fe2O3": 0.01}, "Fe2O3", KindExtra, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp := Compare(umf.FromMap(tt.candidate), target)
			d, ok := cmp.Lookup(tt.oxide)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.Kind)
			assert.InDelta(t, tt.value, d.Value, 1e-12)
		})
	}
}

func TestCompare_NoiseFloor(t *testing.T) {
	target := umf.FromMap(map[string]float64{"SiO2": 3, "TiO2": 0.001})
	candidate := umf.FromMap(map[string]float64{"SiO2": 3, "MnO": 0.0005, "TiO2": 0.2})

	cmp := Compare(candidate, target)

	_, ok := cmp.Lookup("MnO")
	assert.False(t, ok, "candidate noise dropped")
	d, ok := cmp.Lookup("TiO2")
	require.True(t, ok)
	assert.Equal(t, KindExtra, d.Kind, "target at the floor counts as absent")
}

func TestCompare_GroupingAndAlkaliOrder(t *testing.T) {
	target := umf.FromMap(map[string]float64{"CaO": 0.7, "Li2O": 0.1, "SiO2": 3, "Al2O3": 0.3})
	candidate := umf.New()
	candidate.Set("CaO", 0.7)
	candidate.Set("SiO2", 3)
	candidate.Set("Na2O", 0.1)
	candidate.Set("K2O", 0.2)
	candidate.Set("Al2O3", 0.3)

	cmp := Compare(candidate, target)

	var groups []oxide.Group
	for _, g := range cmp.Groups {
		groups = append(groups, g.Group)
	}
	assert.Equal(t, []oxide.Group{oxide.GroupR2ORO, oxide.GroupR2O3, oxide.GroupRO2}, groups)

	var symbols []string
	for _, d := range cmp.Groups[0].Diffs {
		symbols = append(symbols, d.Oxide)
	}
	assert.Equal(t, []string{"K2O", "Na2O", "Li2O", "CaO"}, symbols)

	counts := cmp.Counts()
	assert.Equal(t, 2, counts[KindExtra])
	assert.Equal(t, 1, counts[KindMissing])
	assert.Equal(t, 3, counts[KindLow])
}

func TestCompare_EmptyGroupsOmitted(t *testing.T) {
	cmp := Compare(umf.FromMap(map[string]float64{"SiO2": 3}), umf.FromMap(map[string]float64{"SiO2": 3}))
	require.Len(t, cmp.Groups, 1)
	assert.Equal(t, oxide.GroupRO2, cmp.Groups[0].Group)
}

func TestKindMarker(t *testing.T) {
	assert.Equal(t, "!", KindExtra.Marker())
	assert.Equal(t, "?", KindMissing.Marker())
	assert.Equal(t, "", KindLow.Marker())
}

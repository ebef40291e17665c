package umf

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_DropsInvalidValues(t *testing.T) {
	u := New()
	assert.True(t, u.Set("SiO2", 3))
	assert.False(t, u.Set("CaO", 0))
	assert.False(t, u.Set("MgO", -1))
	assert.False(t, u.Set("ZnO", math.NaN()))
	assert.False(t, u.Set("BaO", math.Inf(1)))
	assert.False(t, u.Set("", 1))
	assert.Equal(t, []string{"SiO2"}, u.Keys())
}

func TestSet_UpdateKeepsPosition(t *testing.T) {
	u := New()
	u.Set("K2O", 0.2)
	u.Set("SiO2", 3)
	u.Set("K2O", 0.3)
	assert.Equal(t, []string{"K2O", "SiO2"}, u.Keys())
	v, _ := u.Get("K2O")
	assert.Equal(t, 0.3, v)
}

func TestDelete(t *testing.T) {
	u := FromMap(map[string]float64{"A": 1, "B": 2, "C": 3})
	u.Delete("B")
	u.Delete("missing")
	assert.Equal(t, []string{"A", "C"}, u.Keys())
}

func TestEqual_IgnoresOrder(t *testing.T) {
	a := New()
	a.Set("SiO2", 3)
	a.Set("Al2O3", 0.3)
	b := New()
	b.Set("Al2O3", 0.3)
	b.Set("SiO2", 3)
	assert.True(t, a.Equal(b))

	b.Set("SiO2", 3.1)
	assert.False(t, a.Equal(b))
}

func TestJSON_PreservesOrder(t *testing.T) {
	u := New()
	u.Set("SiO2", 3.144)
	u.Set("K2O", 0.086)
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, `{"SiO2":3.144,"K2O":0.086}`, string(data))

	var back UMF
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"SiO2", "K2O"}, back.Keys())
	assert.True(t, u.Equal(&back))
}

func TestJSON_DropsNonPositiveAndNonNumeric(t *testing.T) {
	var u UMF
	require.NoError(t, json.Unmarshal([]byte(`{"SiO2":3,"SrO":0,"CaO":"x","MgO":-2,"ZnO":null}`), &u))
	if diff := cmp.Diff(map[string]float64{"SiO2": 3}, u.Map()); diff != "" {
		t.Fatalf("unexpected umf (-want +got):\n%s", diff)
	}
}

func TestJSON_RejectsNonObject(t *testing.T) {
	var u UMF
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &u))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"0.5", 0.5, true},
		{" 3.144 ", 3.144, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseValue(tt.text)
			if !tt.ok {
				var perr *InputParseError
				require.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefault(t *testing.T) {
	u := Default()
	assert.Equal(t, []string{"K2O", "Na2O", "MgO", "CaO", "Al2O3", "B2O3", "SiO2"}, u.Keys())
}

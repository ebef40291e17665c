package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalTrace_Deterministic(t *testing.T) {
	trace := sampleTrace()

	first, err := MarshalTrace("sample", trace)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalTrace("sample", trace)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}

	s := string(first)
	assert.Contains(t, s, `"scenario_name": "sample"`)
	assert.Less(t, strings.Index(s, `"min_materials"`), strings.Index(s, `"umf"`), "map keys are sorted")
	assert.NotContains(t, s, `"seq": 0`, "command events omit seq")
}


package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glaze/internal/store"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Event: EventRequest, Args: map[string]any{"umf": `{"SiO2":3}`, "min_materials": true}, Seq: 1},
		{Event: EventSettled, Args: map[string]any{"outcome": "ok", "solutions": 2}, Seq: 1},
		{Event: "set_value", Args: map[string]any{"row": "SiO2", "value": "4"}, AtMS: 10},
		{Event: EventRequest, Args: map[string]any{"umf": `{"SiO2":4}`, "min_materials": true}, Seq: 2, AtMS: 510},
		{Event: EventSettled, Args: map[string]any{"outcome": "ok", "solutions": 1}, Seq: 2, AtMS: 510},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Event: "set_value", Args: map[string]any{"row": "SiO2"}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Event: EventSettled, Args: map[string]any{"solutions": 1}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Event: EventRequest}))

	err := assertTraceContains(trace, Assertion{Event: EventSettled, Args: map[string]any{"outcome": "stale"}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), "+510ms request seq=2")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Events: []string{EventRequest, "set_value", EventSettled}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Events: []string{EventRequest, EventRequest}}))

	err := assertTraceOrder(trace, Assertion{Events: []string{"set_value", "set_value"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched 1 of 2")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Event: EventSettled, Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Event: EventSkipped, Count: 0}))

	err := assertTraceCount(trace, Assertion{Event: EventRequest, Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 occurrences")
}

func TestAssertFinalState(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	best := 0.02
	_, err = st.AppendSolve(ctx, store.SolveRecord{Seq: 4, RequestToken: "req-4", UMF: `{"SiO2":3}`, Outcome: store.OutcomeOK, Solutions: 3, BestError: &best})
	require.NoError(t, err)
	_, err = st.AppendSolve(ctx, store.SolveRecord{Seq: 5, RequestToken: "req-5", UMF: `{"SiO2":3}`, Outcome: store.OutcomeStale})
	require.NoError(t, err)

	t.Run("match", func(t *testing.T) {
		err := assertFinalState(ctx, st, Assertion{
			Table:  "solves",
			Where:  map[string]any{"seq": 4},
			Expect: map[string]any{"outcome": "ok", "solutions": 3, "best_error": 0.02, "request_token": "req-4"},
		})
		assert.NoError(t, err)
	})

	t.Run("value mismatch", func(t *testing.T) {
		err := assertFinalState(ctx, st, Assertion{
			Table:  "solves",
			Where:  map[string]any{"seq": 5},
			Expect: map[string]any{"outcome": "ok"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `field "outcome"`)
	})

	t.Run("ambiguous", func(t *testing.T) {
		err := assertFinalState(ctx, st, Assertion{
			Table:  "solves",
			Where:  map[string]any{"umf": `{"SiO2":3}`},
			Expect: map[string]any{"outcome": "ok"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
	})

	t.Run("not found", func(t *testing.T) {
		err := assertFinalState(ctx, st, Assertion{
			Table:  "solves",
			Where:  map[string]any{"seq": 99},
			Expect: map[string]any{"outcome": "ok"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row not found")
	})

	t.Run("unknown column", func(t *testing.T) {
		err := assertFinalState(ctx, st, Assertion{
			Table:  "solves",
			Where:  map[string]any{"seq": 4},
			Expect: map[string]any{"colour": "red"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not present")
	})

	t.Run("injection rejected", func(t *testing.T) {
		err := assertFinalState(ctx, st, Assertion{
			Table:  "solves; DROP TABLE kv",
			Expect: map[string]any{"outcome": "ok"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")

		err = assertFinalState(ctx, st, Assertion{
			Table:  "solves",
			Where:  map[string]any{"seq = 1 OR 1": 1},
			Expect: map[string]any{"outcome": "ok"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid column name")
	})
}

func TestStateValuesEqual(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, "x", false},
		{"string", "ok", "ok", true},
		{"string bytes", "ok", []byte("ok"), true},
		{"int vs int64", 3, int64(3), true},
		{"int mismatch", 3, int64(4), false},
		{"float", 0.02, 0.02, true},
		{"float vs int64", 2.0, int64(2), true},
		{"bool vs int64", true, int64(1), true},
		{"bool false", false, int64(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stateValuesEqual(tt.expected, tt.actual))
		})
	}
}

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{Trace: sampleTrace()}
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Event: EventRequest, Count: 2},
		{Type: AssertFinalState, Table: "solves", Expect: map[string]any{"seq": 1}},
		{Type: "bogus"},
	}, nil)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "final_state requires database context")
	assert.Contains(t, errs[1], "unknown assertion type")
}

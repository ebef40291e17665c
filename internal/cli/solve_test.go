package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glaze/internal/store"
)

const twoCandidates = `[
  {"recipe":{"Whiting":20,"Silica":50,"Kaolin":30},"error":0.02,"materials_count":3,"recipe_umf":{"CaO":1,"SiO2":2.9}},
  {"recipe":{"Wollastonite":45,"Silica":55},"error":0.01,"materials_count":2,"recipe_umf":{"CaO":1,"SiO2":3.05}}
]`

func solveServer(t *testing.T, got *map[string]any) string {
	t.Helper()
	return newSolverServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/solve", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		io.WriteString(w, twoCandidates)
	})
}

func TestSolveCommand_Text(t *testing.T) {
	url := solveServer(t, nil)
	cfg := writeConfig(t, "")

	out, err := runCLI(t, "--config", cfg, "--server", url, "solve", "--umf", `{"CaO":1,"SiO2":3}`)
	require.NoError(t, err)

	assert.Contains(t, out, "Solution #1 (2 materials)")
	assert.Contains(t, out, "Solution #2 (3 materials)")
	assert.Less(t, strings.Index(out, "Wollastonite"), strings.Index(out, "Whiting"), "lower error ranks first")
	assert.Contains(t, out, "SiO₂", "expanded comparison is shown")
}

func TestSolveCommand_JSONAndFlags(t *testing.T) {
	var body map[string]any
	url := solveServer(t, &body)
	cfg := writeConfig(t, "maxSolutions: 7\n")

	out, err := runCLI(t, "--config", cfg, "--server", url, "--format", "json",
		"solve", "--umf", `{"CaO":1,"SiO2":3}`, "--min-materials=false", "--tolerance", "0.2", "--exclude", "Whiting")
	require.NoError(t, err)

	assert.Equal(t, float64(7), body["max_solutions"], "config value kept when the flag is unset")
	assert.Equal(t, false, body["min_materials"])
	assert.Equal(t, 0.2, body["error_tolerance"])
	assert.Equal(t, []any{"Whiting"}, body["excluded_materials"])

	var res SolveResult
	resp := decodeResponse(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, res.Solutions, 1, "recipes using an excluded material are dropped")
	assert.Equal(t, 2, res.Solutions[0].Candidate.MaterialsCount)
	assert.Equal(t, `{"CaO":1,"SiO2":3}`, res.Target.String())
}

func TestSolveCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		server   func(t *testing.T) string
		umf      string
		wantExit int
		wantCode string
	}{
		{
			name:     "service refuses",
			server: func(t *testing.T) string {
				return newSolverServer(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusUnprocessableEntity)
					io.WriteString(w, `{"error":"infeasible","message":"no feasible recipe"}`)
				})
			},
			umf:      `{"SiO2":3}`,
			wantExit: ExitFailure,
			wantCode: CodeRequest,
		},
		{
			name:     "service down",
			server:   downServer,
			umf:      `{"SiO2":3}`,
			wantExit: ExitFailure,
			wantCode: CodeUnavailable,
		},
		{
			name:     "empty umf",
			server:   downServer,
			umf:      `{"SiO2":0}`,
			wantExit: ExitCommandError,
			wantCode: CodeInput,
		},
		{
			name:     "bad token",
			server:   downServer,
			umf:      "glaze://recipe/#%ZZ",
			wantExit: ExitCommandError,
			wantCode: CodeInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeConfig(t, "")
			out, err := runCLI(t, "--config", cfg, "--server", tt.server(t), "--format", "json", "solve", "--umf", tt.umf)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.True(t, IsReported(err))

			resp := decodeResponse(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestSolveCommand_RecordThenHistory(t *testing.T) {
	url := solveServer(t, nil)
	cfg := writeConfig(t, "")

	_, err := runCLI(t, "--config", cfg, "--server", url, "solve", "--umf", `{"SiO2":3}`, "--record")
	require.NoError(t, err)
	_, err = runCLI(t, "--config", cfg, "--server", downServer(t), "solve", "--umf", `{"SiO2":4}`, "--record")
	require.Error(t, err)

	out, err := runCLI(t, "--config", cfg, "--format", "json", "history")
	require.NoError(t, err)

	var records []store.SolveRecord
	decodeResponse(t, out, &records)
	require.Len(t, records, 2)

	assert.Equal(t, int64(2), records[0].Seq, "newest first")
	assert.Equal(t, store.OutcomeError, records[0].Outcome)
	assert.NotEmpty(t, records[0].Message)

	assert.Equal(t, int64(1), records[1].Seq)
	assert.Equal(t, store.OutcomeOK, records[1].Outcome)
	assert.Equal(t, 2, records[1].Solutions)
	require.NotNil(t, records[1].BestError)
	assert.Equal(t, 0.01, *records[1].BestError)
	assert.NotEmpty(t, records[1].RequestToken)

	text, err := runCLI(t, "--config", cfg, "history", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, text, "#2")
	assert.NotContains(t, text, "#1 ")
}

func TestHistoryCommand_Empty(t *testing.T) {
	cfg := writeConfig(t, "")
	out, err := runCLI(t, "--config", cfg, "history")
	require.NoError(t, err)
	assert.Equal(t, "No solves recorded.\n", out)
}

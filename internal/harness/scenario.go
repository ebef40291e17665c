package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/glaze/internal/engine"
	"github.com/roach88/glaze/internal/umf"
)

// Scenario defines a conformance test scenario.
// A scenario starts an engine against a scripted solver, feeds it commands
// and virtual time, and asserts on the resulting trace, the engine state
// and the solve log.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Options configure the engine.
	Options ScenarioOptions `yaml:"options,omitempty"`

	// Stored is the persisted token present before the engine starts.
	// Empty means nothing is stored and the default formula is used.
	Stored string `yaml:"stored,omitempty"`

	// RequestToken, when set, is the token every solve request carries.
	// Otherwise requests are numbered req-1, req-2 and so on.
	RequestToken string `yaml:"request_token,omitempty"`

	// Solver scripts the solving service.
	Solver SolverSetup `yaml:"solver,omitempty"`

	// Steps run in order after the engine has started.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and the solve log.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ScenarioOptions mirror engine.Options.
type ScenarioOptions struct {
	Layout           string `yaml:"layout,omitempty"`
	DisableMaterials bool   `yaml:"disable_materials,omitempty"`
	MinMaterials     *bool  `yaml:"min_materials,omitempty"`
	QuietPeriod      string `yaml:"quiet_period,omitempty"`
}

// SolverSetup scripts how the fake solving service answers.
type SolverSetup struct {
	// Hold keeps solve calls pending until a release step.
	Hold bool `yaml:"hold,omitempty"`

	// Down makes solves fail as if the service were unreachable.
	Down bool `yaml:"down,omitempty"`

	// Fail makes solves fail with this service message.
	Fail string `yaml:"fail,omitempty"`

	// Candidates are returned by every successful solve.
	Candidates []CandidateSpec `yaml:"candidates,omitempty"`
}

// CandidateSpec is a solver candidate in scenario form.
type CandidateSpec struct {
	Recipe    map[string]float64 `yaml:"recipe,omitempty"`
	Error     float64            `yaml:"error"`
	Materials int                `yaml:"materials"`
	UMF       map[string]float64 `yaml:"umf,omitempty"`
}

// Step is one scenario action. Exactly one of Do, Advance, Release and
// Respond is set, except for a bare Expect step.
type Step struct {
	// Do is an engine command kind such as "set_value".
	Do string `yaml:"do,omitempty"`

	// Row addresses the row holding this oxide, or "#<id>".
	Row      string             `yaml:"row,omitempty"`
	Group    string             `yaml:"group,omitempty"`
	Oxide    string             `yaml:"oxide,omitempty"`
	Value    string             `yaml:"value,omitempty"`
	Flag     *bool              `yaml:"flag,omitempty"`
	Material string             `yaml:"material,omitempty"`
	Token    string             `yaml:"token,omitempty"`
	UMF      map[string]float64 `yaml:"umf,omitempty"`

	// Advance moves virtual time forward, e.g. "500ms".
	Advance string `yaml:"advance,omitempty"`

	// Release completes held solves: "oldest", "newest" or "all".
	Release string `yaml:"release,omitempty"`

	// Respond replaces the solver script for later solves.
	Respond *SolverSetup `yaml:"respond,omitempty"`

	// ExpectError is the error code the command must be refused with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Expect checks engine state after the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a subset match against the engine snapshot. Unset fields are
// not checked.
type Expect struct {
	UMF       map[string]float64 `yaml:"umf,omitempty"`
	Rows      []string           `yaml:"rows,omitempty"`
	Busy      *bool              `yaml:"busy,omitempty"`
	Scheduler string             `yaml:"scheduler,omitempty"`
	Status    string             `yaml:"status,omitempty"`
	Notice    *string            `yaml:"notice,omitempty"`
	Solutions *int               `yaml:"solutions,omitempty"`
	Errors    []float64          `yaml:"errors,omitempty"`
	Excluded  []string           `yaml:"excluded,omitempty"`
	Requests  *int               `yaml:"requests,omitempty"`
	Pending   *int               `yaml:"pending,omitempty"`
	Applied   *int64             `yaml:"applied,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event with matching args appears in the trace
	// - "trace_order": events appear in order
	// - "trace_count": an event appears exactly N times
	// - "final_state": query a store table and verify expected values
	Type string `yaml:"type"`

	// Event is the trace event name (used by trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// Args are the expected event arguments (used by trace_contains).
	// Subset match - only specified fields are validated.
	Args map[string]any `yaml:"args,omitempty"`

	// Table is the store table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected event order (used by trace_order).
	Events []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Release modes.
const (
	ReleaseOldest = "oldest"
	ReleaseNewest = "newest"
	ReleaseAll    = "all"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := umf.ParseLayout(s.Options.Layout); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	if s.Options.QuietPeriod != "" {
		if _, err := time.ParseDuration(s.Options.QuietPeriod); err != nil {
			return fmt.Errorf("options.quiet_period: %w", err)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	actions := 0
	for _, set := range []bool{st.Do != "", st.Advance != "", st.Release != "", st.Respond != nil} {
		if set {
			actions++
		}
	}
	if actions > 1 {
		return fmt.Errorf("steps[%d]: only one of do, advance, release, respond may be set", index)
	}
	if actions == 0 && st.Expect == nil {
		return fmt.Errorf("steps[%d]: step does nothing", index)
	}
	if st.ExpectError != "" && st.Do == "" {
		return fmt.Errorf("steps[%d]: expect_error requires do", index)
	}

	if st.Do != "" {
		if _, ok := engine.ParseCommandKind(st.Do); !ok {
			return fmt.Errorf("steps[%d]: unknown command %q", index, st.Do)
		}
	}
	if st.Advance != "" {
		d, err := time.ParseDuration(st.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d].advance: %w", index, err)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d].advance: must be positive", index)
		}
	}
	switch st.Release {
	case "", ReleaseOldest, ReleaseNewest, ReleaseAll:
	default:
		return fmt.Errorf("steps[%d]: unknown release mode %q", index, st.Release)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/glaze/internal/engine"
	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/solver"
	"github.com/roach88/glaze/internal/store"
	"github.com/roach88/glaze/internal/testutil"
	"github.com/roach88/glaze/internal/umf"
)

// Harness is the test execution engine.
// It runs one scenario against a real engine with a virtual clock, a
// scripted solver and an in-memory store.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	clock    *testutil.FakeClock
	start    time.Time
	launcher *testutil.Launcher
	solver   *testutil.FakeSolver
	result   *Result
	issued   int64
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database and seed the stored formula
// 2. Start the engine against the scripted solver
// 3. Execute steps, checking expect clauses as they go
// 4. Evaluate assertions against the trace and the solve log
//
// A malformed step (unknown row, no held solve to release) is returned as
// an error; failed expectations are recorded on the result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if scenario.Stored != "" {
		if err := st.Put(ctx, persist.LocalKey, scenario.Stored); err != nil {
			return nil, fmt.Errorf("seed stored formula: %w", err)
		}
	}

	h, err := newHarness(st, scenario)
	if err != nil {
		return nil, err
	}

	if err := h.engine.Init(ctx); err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	h.engine.Drain(ctx)

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, &AssertionContext{Store: st, Ctx: ctx}) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(st *store.Store, scenario *Scenario) (*Harness, error) {
	opts, err := engineOptions(scenario.Options)
	if err != nil {
		return nil, err
	}

	clock := testutil.NewFakeClock()
	h := &Harness{
		store:    st,
		clock:    clock,
		start:    clock.Now(),
		launcher: testutil.NewInlineLauncher(),
		solver:   testutil.NewFakeSolver(),
		result:   NewResult(),
	}
	if scenario.Solver.Hold {
		h.launcher = testutil.NewLauncher()
	}
	h.solver.Respond = scenario.Solver.respond()

	var tokens engine.TokenGenerator = engine.NewFixedGenerator()
	if scenario.RequestToken != "" {
		tokens = testutil.NewFixedTokenGenerator(scenario.RequestToken)
	}

	h.engine = engine.New(h.solver, opts,
		engine.WithPersistence(persist.JSONCodec{}, persist.NewLocalChannel(st)),
		engine.WithRecorder(recorder{h}),
		engine.WithAfterFunc(func(d time.Duration, f func()) engine.Timer { return clock.AfterFunc(d, f) }),
		engine.WithLauncher(h.launcher.Launch),
		engine.WithTokens(tokens),
	)
	h.engine.Subscribe(h.observe)
	return h, nil
}

func engineOptions(so ScenarioOptions) (engine.Options, error) {
	opts := engine.DefaultOptions()
	layout, err := umf.ParseLayout(so.Layout)
	if err != nil {
		return opts, err
	}
	opts.Layout = layout
	opts.DisableMaterials = so.DisableMaterials
	if so.MinMaterials != nil {
		opts.MinMaterials = *so.MinMaterials
	}
	if so.QuietPeriod != "" {
		d, err := time.ParseDuration(so.QuietPeriod)
		if err != nil {
			return opts, err
		}
		opts.QuietPeriod = d
	}
	return opts, nil
}

// respond turns the script into a solver answer function.
func (s SolverSetup) respond() func(solver.Request) ([]solution.Candidate, error) {
	return func(solver.Request) ([]solution.Candidate, error) {
		switch {
		case s.Down:
			return nil, &solver.RequestError{Op: "solve", Message: "connection refused", Transport: true}
		case s.Fail != "":
			return nil, &solver.RequestError{Op: "solve", Status: 500, Message: s.Fail}
		}
		out := make([]solution.Candidate, 0, len(s.Candidates))
		for _, c := range s.Candidates {
			cand := solution.Candidate{
				Recipe:         c.Recipe,
				Error:          c.Error,
				MaterialsCount: c.Materials,
			}
			if c.UMF != nil {
				cand.RecipeUMF = umf.FromMap(c.UMF)
			}
			out = append(out, cand)
		}
		return out, nil
	}
}

func (h *Harness) now() int64 {
	return h.clock.Now().Sub(h.start).Milliseconds()
}

// observe records issued and skipped solves from published snapshots.
func (h *Harness) observe(snap engine.Snapshot) {
	if snap.Issued == h.issued {
		return
	}
	h.issued = snap.Issued
	if snap.UMF.Len() == 0 {
		h.result.AddTrace(EventSkipped, nil, snap.Issued, h.now())
		return
	}
	h.result.AddTrace(EventRequest, map[string]any{
		"umf":           snap.UMF.String(),
		"min_materials": snap.MinMaterials,
	}, snap.Issued, h.now())
}

// recorder writes settled solves to the store and the trace.
type recorder struct{ h *Harness }

func (r recorder) AppendSolve(ctx context.Context, rec store.SolveRecord) (int64, error) {
	r.h.result.AddTrace(EventSettled, map[string]any{
		"outcome":   string(rec.Outcome),
		"solutions": rec.Solutions,
	}, rec.Seq, r.h.now())
	return r.h.store.AppendSolve(ctx, rec)
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step) error {
	switch {
	case step.Do != "":
		if err := h.executeCommand(ctx, step); err != nil {
			return err
		}

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		h.clock.Advance(d)
		h.engine.Drain(ctx)

	case step.Release != "":
		if h.launcher.Pending() == 0 {
			return fmt.Errorf("no held solve to release")
		}
		switch step.Release {
		case ReleaseOldest:
			h.launcher.Release(0)
		case ReleaseNewest:
			h.launcher.Release(h.launcher.Pending() - 1)
		case ReleaseAll:
			h.launcher.ReleaseAll()
		}
		h.engine.Drain(ctx)

	case step.Respond != nil:
		h.solver.Respond = step.Respond.respond()
	}

	if step.Expect != nil {
		for _, msg := range h.check(*step.Expect) {
			h.result.AddError(fmt.Sprintf("steps[%d]: %s", index, msg))
		}
	}
	return nil
}

func (h *Harness) executeCommand(ctx context.Context, step Step) error {
	kind, _ := engine.ParseCommandKind(step.Do)
	cmd := engine.Command{Kind: kind, Oxide: step.Oxide, Text: step.Value, Material: step.Material, Token: step.Token}
	args := map[string]any{}

	if step.Row != "" {
		id, err := h.resolveRow(step.Row)
		if err != nil {
			return err
		}
		cmd.RowID = id
		args["row"] = step.Row
	}
	if step.Group != "" {
		g, ok := oxide.ParseGroup(step.Group)
		if !ok {
			return fmt.Errorf("unknown group %q", step.Group)
		}
		cmd.Group = g
		args["group"] = step.Group
	}
	if step.Flag != nil {
		cmd.Flag = *step.Flag
		args["flag"] = *step.Flag
	}
	if step.UMF != nil {
		token, err := persist.JSONCodec{}.Encode(umf.FromMap(step.UMF))
		if err != nil {
			return err
		}
		cmd.Token = token
	}
	for k, v := range map[string]string{"oxide": step.Oxide, "value": step.Value, "material": step.Material, "token": cmd.Token} {
		if v != "" {
			args[k] = v
		}
	}
	if len(args) == 0 {
		args = nil
	}
	h.result.AddTrace(step.Do, args, 0, h.now())

	err := h.engine.Step(ctx, cmd)
	switch {
	case step.ExpectError != "":
		var ce *engine.CommandError
		if !errors.As(err, &ce) {
			h.result.AddError(fmt.Sprintf("%s: expected error %s, got %v", step.Do, step.ExpectError, err))
		} else if string(ce.Code) != step.ExpectError {
			h.result.AddError(fmt.Sprintf("%s: expected error %s, got %s", step.Do, step.ExpectError, ce.Code))
		}
	case err != nil:
		h.result.AddError(fmt.Sprintf("%s: unexpected error: %v", step.Do, err))
	}
	return nil
}

// resolveRow maps "#<id>" or an oxide symbol to a row ID.
func (h *Harness) resolveRow(ref string) (int, error) {
	if rest, ok := strings.CutPrefix(ref, "#"); ok {
		id, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("bad row reference %q", ref)
		}
		return id, nil
	}
	for _, row := range h.engine.Snapshot().Rows {
		if row.Oxide == ref {
			return row.ID, nil
		}
	}
	return 0, fmt.Errorf("no row holds %s", ref)
}

// check compares the snapshot with want and returns one message per
// mismatch.
func (h *Harness) check(want Expect) []string {
	snap := h.engine.Snapshot()
	var out []string
	mismatch := func(field string, want, got any) {
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			out = append(out, fmt.Sprintf("%s mismatch (-want +got):\n%s", field, diff))
		}
	}

	if want.UMF != nil {
		mismatch("umf", want.UMF, snap.UMF.Map())
	}
	if want.Rows != nil {
		got := make([]string, 0, len(snap.Rows))
		for _, r := range snap.Rows {
			got = append(got, r.Oxide)
		}
		mismatch("rows", want.Rows, got)
	}
	if want.Busy != nil {
		mismatch("busy", *want.Busy, snap.Busy)
	}
	if want.Scheduler != "" {
		mismatch("scheduler", want.Scheduler, snap.Scheduler)
	}
	if want.Status != "" {
		mismatch("status", want.Status, string(snap.Status.Key))
	}
	if want.Notice != nil {
		mismatch("notice", *want.Notice, string(snap.Notice.Key))
	}
	if want.Solutions != nil {
		mismatch("solutions", *want.Solutions, len(snap.Solutions))
	}
	if want.Errors != nil {
		got := make([]float64, 0, len(snap.Solutions))
		for _, s := range snap.Solutions {
			got = append(got, s.Candidate.Error)
		}
		mismatch("errors", want.Errors, got)
	}
	if want.Excluded != nil {
		mismatch("excluded", want.Excluded, snap.Excluded)
	}
	if want.Requests != nil {
		mismatch("requests", *want.Requests, h.solver.Calls())
	}
	if want.Pending != nil {
		mismatch("pending", *want.Pending, h.launcher.Pending())
	}
	if want.Applied != nil {
		mismatch("applied", *want.Applied, snap.Applied)
	}
	return out
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/solver"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/store"
	"github.com/roach88/glaze/internal/umf"
)

// Solver is the part of the solving service the engine calls.
// Implemented by *solver.Client (production) and testutil.FakeSolver (tests).
type Solver interface {
	Health(ctx context.Context) error
	MolarMasses(ctx context.Context) (*oxide.Registry, error)
	Solve(ctx context.Context, req solver.Request) ([]solution.Candidate, error)
}

// Recorder receives one row per settled solve request.
// Implemented by *store.Store.
type Recorder interface {
	AppendSolve(ctx context.Context, rec store.SolveRecord) (int64, error)
}

// Options are the behavioural switches of one engine.
type Options struct {
	Layout           umf.Layout
	DisableMaterials bool
	QuietPeriod      time.Duration
	MaxSolutions     int
	ErrorTolerance   float64
	MinMaterials     bool
	RequestTimeout   time.Duration
	// ServerURL is shown in notices about an unreachable solver.
	ServerURL string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Layout:         umf.LayoutDynamic,
		QuietPeriod:    DefaultQuietPeriod,
		MaxSolutions:   solver.DefaultMaxSolutions,
		ErrorTolerance: solver.DefaultErrorTolerance,
		MinMaterials:   true,
		RequestTimeout: solver.DefaultTimeout,
		ServerURL:      solver.DefaultBaseURL,
	}
}

// Engine is the single-writer recipe composition event loop.
//
// The engine owns the rows, the target UMF derived from them, the ranked
// solutions and the busy flag. Everything that changes them (user
// commands, debounce timer expiry, solve completions, deferred focus
// restoration, outside edits of the persisted formula) arrives as an Event
// on one FIFO queue and is applied by one goroutine.
//
// Thread-safety model:
//   - Send(), Do(): safe from any goroutine
//   - Run(), Drain(): must be called from exactly one goroutine
//   - Init(): before Run, from the goroutine that will call Run
//   - Subscribe(): before Run
//
// INVARIANTS:
//   - No two rows hold the same oxide
//   - A row edit rebuilds and persists the UMF inside the same event
//   - A solve response older than the last applied one is discarded
//   - Busy is set once per burst and cleared only when a solve settles
type Engine struct {
	opts     Options
	solver   Solver
	adapter  *persist.Adapter
	recorder Recorder
	clock    *Clock
	tokens   TokenGenerator
	queue    *eventQueue
	deb      *debouncer
	after    AfterFunc
	launch   func(func())

	codec   persist.Codec
	channel persist.Channel

	// ctx is the base context of solve requests, set by Run and Drain.
	ctx context.Context

	// Loop-owned state.
	registry     *oxide.Registry
	rows         *umf.Rows
	target       *umf.UMF
	raw          []solution.Candidate // last applied result, ranked
	solutions    []Solution
	busy         bool
	minMaterials bool
	excluded     []string
	status       status.Line
	notice       status.Line
	focus        persist.Focus
	hasFocus     bool
	focusEpoch   int
	issued       int64
	applied      int64
	version      int64

	listeners []func(Snapshot)
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithPersistence stores the formula on channel using codec. Without it the
// formula is not persisted.
func WithPersistence(codec persist.Codec, channel persist.Channel) EngineOption {
	return func(e *Engine) {
		e.codec = codec
		e.channel = channel
	}
}

// WithRecorder logs every settled solve.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithAfterFunc replaces the debounce timer source.
func WithAfterFunc(f AfterFunc) EngineOption {
	return func(e *Engine) { e.after = f }
}

// WithLauncher replaces how solve calls are started. The default runs each
// call on its own goroutine; tests hold calls and release them in any order.
func WithLauncher(launch func(func())) EngineOption {
	return func(e *Engine) { e.launch = launch }
}

// WithTokens replaces the request token generator.
func WithTokens(g TokenGenerator) EngineOption {
	return func(e *Engine) { e.tokens = g }
}

// WithClock replaces the sequence clock, e.g. one resumed with NewClockAt.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine talking to s.
func New(s Solver, o Options, opts ...EngineOption) *Engine {
	if o.QuietPeriod < 0 {
		o.QuietPeriod = DefaultQuietPeriod
	}
	if o.Layout == "" {
		o.Layout = umf.LayoutDynamic
	}

	e := &Engine{
		opts:         o,
		solver:       s,
		clock:        NewClock(),
		tokens:       UUIDv7Generator{},
		queue:        newEventQueue(),
		after:        RealAfterFunc,
		launch:       func(fn func()) { go fn() },
		ctx:          context.Background(),
		registry:     oxide.Default(),
		rows:         umf.NewRows(o.Layout),
		target:       umf.New(),
		minMaterials: o.MinMaterials,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.channel == nil {
		e.codec, e.channel = persist.JSONCodec{}, persist.NoneChannel{}
	}
	e.adapter = persist.NewAdapter(e.codec, e.channel, persist.WithFocusKeeper(e, e.later))
	e.deb = newDebouncer(o.QuietPeriod, e.after, func(gen uint64) {
		e.queue.Enqueue(Event{Type: EventTypeTimer, Generation: gen})
	})
	return e
}

// Init loads the oxide registry and the persisted formula, then issues the
// first solve. Failures fall back to built-in defaults and leave a notice;
// only a cancelled ctx is returned as an error.
func (e *Engine) Init(ctx context.Context) error {
	e.ctx = ctx

	if reg, err := e.solver.MolarMasses(ctx); err != nil {
		slog.Warn("molar masses unavailable, using built-in table", "error", err)
		e.notice = status.New(status.MassesFallback, errorMessage(err))
	} else {
		e.registry = reg
	}
	if err := e.solver.Health(ctx); err != nil {
		slog.Warn("solver health check failed", "server", e.opts.ServerURL, "error", err)
		e.notice = status.New(status.ServerDown, e.opts.ServerURL)
	}

	u, err := e.adapter.Load(ctx)
	if err != nil {
		slog.Warn("stored formula unreadable, using default", "error", err)
		e.status = status.New(status.LoadFailed, err.Error())
	}
	if u != nil {
		e.rows.Load(u, umf.DefaultFields)
		slog.Info("formula restored", "umf", u.String())
	} else {
		e.rows.Reset(umf.DefaultFields)
	}
	e.edited(false)
	e.solveNow()
	e.publish()

	return ctx.Err()
}

// Subscribe registers fn to receive a snapshot after every processed event.
// fn runs on the loop goroutine and must not block.
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.listeners = append(e.listeners, fn)
}

// Send submits a command for the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Send(cmd Command) bool {
	return e.queue.Enqueue(Event{Type: EventTypeCommand, Command: &cmd})
}

// Do submits a command and waits until the loop has applied it.
func (e *Engine) Do(ctx context.Context, cmd Command) error {
	reply := make(chan error, 1)
	if !e.queue.Enqueue(Event{Type: EventTypeCommand, Command: &cmd, reply: reply}) {
		return ErrStopped
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called.
//
// ERROR HANDLING: an event that fails is logged with its context and the
// loop continues. Refused commands leave state untouched.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting")
	e.ctx = ctx

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			e.handle(event)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			e.deb.stop()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed.
			if e.queue.Len() == 0 && e.stopped() {
				slog.Info("engine stopping: queue closed")
				e.deb.stop()
				return nil
			}
		}
	}
}

// Drain processes queued events until the queue is empty and returns how
// many it handled. It is the synchronous counterpart of Run for tests and
// scenario replay; never call it while Run is active.
func (e *Engine) Drain(ctx context.Context) int {
	e.ctx = ctx
	n := 0
	for {
		event, ok := e.queue.TryDequeue()
		if !ok {
			return n
		}
		e.handle(event)
		n++
	}
}

// Step applies cmd after everything already queued, drains what it
// caused and returns the command's result. Like Drain it must not be
// called while Run is active.
func (e *Engine) Step(ctx context.Context, cmd Command) error {
	reply := make(chan error, 1)
	if !e.queue.Enqueue(Event{Type: EventTypeCommand, Command: &cmd, reply: reply}) {
		return ErrStopped
	}
	e.Drain(ctx)
	return <-reply
}

// Stop gracefully shuts down the engine.
// Closes the event queue, which will cause Run() to return.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) stopped() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.done
}

// Snapshot returns a copy of the current state. Call it from the loop
// goroutine (e.g. a subscriber) or when neither Run nor Drain is active.
func (e *Engine) Snapshot() Snapshot {
	rows := e.rows.All()
	options := make(map[int][]string, len(rows))
	for _, r := range rows {
		options[r.ID] = e.rows.AvailableFor(r.Group, r.ID, e.registry)
	}
	divider, hasDivider := e.rows.DividerAfter()
	return Snapshot{
		Version:      e.version,
		Layout:       e.rows.Layout(),
		Rows:         rows,
		UMF:          e.target.Clone(),
		Registry:     e.registry,
		Options:      options,
		Divider:      divider,
		HasDivider:   hasDivider,
		Solutions:    cloneSolutions(e.solutions),
		Busy:         e.busy,
		Scheduler:    e.deb.state.String(),
		MinMaterials: e.minMaterials,
		Excluded:     slices.Clone(e.excluded),
		Status:       e.status,
		Notice:       e.notice,
		Focus:        e.focus,
		HasFocus:     e.hasFocus,
		FocusEpoch:   e.focusEpoch,
		Issued:       e.issued,
		Applied:      e.applied,
	}
}

// handle processes one event and notifies subscribers.
// CRITICAL: Called only from the loop goroutine - single-writer guarantee.
func (e *Engine) handle(event Event) {
	if err := e.processEvent(event); err != nil {
		logEventError(event, err)
	}
	e.publish()
}

func (e *Engine) processEvent(event Event) error {
	switch event.Type {
	case EventTypeCommand:
		if event.Command == nil {
			return fmt.Errorf("command event missing command")
		}
		err := e.Apply(*event.Command)
		if event.reply != nil {
			event.reply <- err
		}
		return err

	case EventTypeTimer:
		if !e.deb.fire(event.Generation) {
			slog.Debug("ignoring superseded timer", "generation", event.Generation)
			return nil
		}
		e.issue()
		return nil

	case EventTypeSettled:
		if event.Settled == nil {
			return fmt.Errorf("settled event missing result")
		}
		e.settle(event.Settled)
		return nil

	case EventTypeDeferred:
		if event.Deferred != nil {
			event.Deferred()
		}
		return nil

	default:
		return fmt.Errorf("unknown event type: %d", event.Type)
	}
}

// Apply is the reducer: it applies one command to engine state. It is
// called by the loop for every command event.
func (e *Engine) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdAddRow:
		if _, err := e.rows.AddDefault(cmd.Group, e.registry); err != nil {
			return commandError(cmd, err)
		}
		e.edited(false)

	case CmdSelectOxide:
		if err := e.rows.Select(cmd.RowID, cmd.Oxide); err != nil {
			return commandError(cmd, err)
		}
		e.edited(true)

	case CmdSetValue:
		if err := e.rows.SetValue(cmd.RowID, cmd.Text); err != nil {
			return commandError(cmd, err)
		}
		e.edited(true)

	case CmdDeleteRow:
		if err := e.rows.Delete(cmd.RowID); err != nil {
			return commandError(cmd, err)
		}
		e.dropStaleFocus()
		e.edited(true)

	case CmdSetMinMaterials:
		e.minMaterials = cmd.Flag
		e.solveNow()

	case CmdDisableMaterial, CmdEnableMaterial:
		if !e.opts.DisableMaterials {
			return &CommandError{Code: ErrCodeUnsupported, Command: cmd.Kind, Message: "material exclusion is disabled"}
		}
		if cmd.Material == "" {
			return &CommandError{Code: ErrCodeInvalidCommand, Command: cmd.Kind, Message: "material name is required"}
		}
		i := slices.Index(e.excluded, cmd.Material)
		switch {
		case cmd.Kind == CmdDisableMaterial && i < 0:
			e.excluded = append(e.excluded, cmd.Material)
		case cmd.Kind == CmdEnableMaterial && i >= 0:
			e.excluded = slices.Delete(e.excluded, i, i+1)
		default:
			return nil
		}
		e.refresh()
		e.scheduleSolve()

	case CmdFocus:
		e.focus, e.hasFocus = cmd.Focus, true

	case CmdBlur:
		e.focus, e.hasFocus = persist.Focus{}, false

	case CmdSolveNow:
		e.solveNow()

	case CmdExternalChange:
		u, changed, err := e.adapter.Observe(cmd.Token)
		if err != nil {
			slog.Warn("ignoring unreadable outside change", "error", err)
			e.status = status.New(status.LoadFailed, err.Error())
			return nil
		}
		if !changed {
			return nil
		}
		slog.Info("formula changed outside", "umf", u.String())
		e.rows.Load(u, umf.DefaultFields)
		e.dropStaleFocus()
		e.target = e.rows.Rebuild()
		e.refresh()
		e.scheduleSolve()

	default:
		return &CommandError{Code: ErrCodeInvalidCommand, Command: cmd.Kind, Message: "unknown command"}
	}
	return nil
}

// edited rebuilds and persists the target after a row change.
func (e *Engine) edited(solve bool) {
	e.target = e.rows.Rebuild()
	if _, err := e.adapter.Save(e.ctx, e.target); err != nil {
		slog.Warn("save formula failed", "error", err)
		e.status = status.New(status.SaveFailed, err.Error())
	}
	e.refresh()
	if solve {
		e.scheduleSolve()
	}
}

// scheduleSolve arms the debouncer. Busy is raised on the first edit of a
// burst only.
func (e *Engine) scheduleSolve() {
	e.markBusy()
	e.deb.schedule()
}

// solveNow issues a solve without waiting for the quiet period.
func (e *Engine) solveNow() {
	e.markBusy()
	e.deb.bypass()
	e.issue()
}

func (e *Engine) markBusy() {
	if !e.busy {
		e.busy = true
		e.status = status.New(status.Calculating)
	}
}

// issue sends the current target to the solver. The debouncer is firing on
// entry and idle on return.
func (e *Engine) issue() {
	defer e.deb.done()

	seq := e.clock.Next()
	e.issued = seq

	u := e.target.Clone()
	if u.Len() == 0 {
		// Nothing to solve; responses still in flight are now stale.
		e.applied = seq
		e.busy = false
		e.raw, e.solutions = nil, nil
		e.status = status.New(status.EnterUMF)
		slog.Debug("solve skipped: empty formula", "seq", seq)
		return
	}

	token := e.tokens.Generate()
	req := solver.Request{
		UMF:            u,
		MaxSolutions:   e.opts.MaxSolutions,
		MinMaterials:   e.minMaterials,
		ErrorTolerance: e.opts.ErrorTolerance,
		Token:          token,
	}
	if e.opts.DisableMaterials {
		req.ExcludedMaterials = slices.Clone(e.excluded)
	}

	slog.Debug("solve issued", "seq", seq, "token", token, "umf", u.String())

	ctx, timeout := e.ctx, e.opts.RequestTimeout
	e.launch(func() {
		rctx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		cands, err := e.solver.Solve(rctx, req)
		e.queue.Enqueue(Event{Type: EventTypeSettled, Settled: &settled{
			seq:        seq,
			token:      token,
			umf:        u,
			candidates: cands,
			err:        err,
			duration:   time.Since(start),
		}})
	})
}

// settle applies a solve result unless a newer one was already applied.
func (e *Engine) settle(r *settled) {
	if r.seq <= e.applied {
		slog.Debug("discarding stale solve response", "seq", r.seq, "applied", e.applied, "token", r.token)
		e.record(r, store.OutcomeStale)
		return
	}
	e.applied = r.seq
	if r.seq == e.issued && !e.deb.armed() {
		e.busy = false
	}

	switch {
	case r.err != nil:
		slog.Warn("solve failed", "seq", r.seq, "token", r.token, "error", r.err)
		e.raw, e.solutions = nil, nil
		e.status = status.New(status.SolveFailed, errorMessage(r.err))
		if solver.IsTransport(r.err) {
			e.notice = status.New(status.ServerDown, e.opts.ServerURL)
		}
		e.record(r, store.OutcomeError)

	case len(r.candidates) == 0:
		e.raw, e.solutions = nil, nil
		e.status = status.New(status.NoSolutions)
		e.record(r, store.OutcomeEmpty)

	default:
		e.raw = solution.Rank(r.candidates)
		e.refresh()
		if len(e.solutions) == 0 {
			e.status = status.New(status.NoSolutions)
		} else {
			e.status = status.New(status.Found, len(e.solutions))
		}
		if e.notice.Key == status.ServerDown {
			e.notice = status.Line{}
		}
		e.record(r, store.OutcomeOK)
	}
}

// refresh re-derives displayed solutions from the last result, the
// exclusion list and the live target.
func (e *Engine) refresh() {
	cands := e.raw
	if e.opts.DisableMaterials {
		cands = solution.Exclude(cands, e.excluded)
	}
	if len(cands) == 0 {
		e.solutions = nil
		return
	}
	e.solutions = make([]Solution, 0, len(cands))
	for _, c := range cands {
		e.solutions = append(e.solutions, Solution{
			Candidate:  c,
			Comparison: solution.Compare(c.RecipeUMF, e.target),
		})
	}
}

func (e *Engine) record(r *settled, outcome store.Outcome) {
	if e.recorder == nil {
		return
	}
	rec := store.SolveRecord{
		Seq:          r.seq,
		RequestToken: r.token,
		UMF:          r.umf.String(),
		Outcome:      outcome,
		Solutions:    len(r.candidates),
		Duration:     r.duration,
	}
	if r.err != nil {
		rec.Message = errorMessage(r.err)
	}
	for _, c := range r.candidates {
		if rec.BestError == nil || c.Error < *rec.BestError {
			best := c.Error
			rec.BestError = &best
		}
	}
	if _, err := e.recorder.AppendSolve(e.ctx, rec); err != nil {
		slog.Warn("record solve failed", "seq", r.seq, "error", err)
	}
}

func (e *Engine) publish() {
	e.version++
	if len(e.listeners) == 0 {
		return
	}
	snap := e.Snapshot()
	for _, fn := range e.listeners {
		fn(snap)
	}
}

func errorMessage(err error) string {
	var re *solver.RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}

// logEventError logs an event processing failure with full context.
func logEventError(event Event, err error) {
	attrs := []any{"event_type", event.Type, "error", err}
	if event.Command != nil {
		attrs = append(attrs, "command", event.Command.Kind.String(), "row", event.Command.RowID)
	}
	if event.Settled != nil {
		attrs = append(attrs, "seq", event.Settled.seq)
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		slog.Info("command refused", attrs...)
		return
	}
	slog.Error("event processing failed", attrs...)
}

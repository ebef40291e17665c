package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/glaze/internal/config"
	"github.com/roach88/glaze/internal/engine"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/solver"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/store"
	"github.com/roach88/glaze/internal/tui"
	"github.com/roach88/glaze/internal/umf"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	UMF            string
	MaxSolutions   int
	MinMaterials   bool
	ErrorTolerance float64
	Exclude        []string
	Record         bool
}

// SolveResult is the JSON payload of the solve command.
type SolveResult struct {
	Target    *umf.UMF          `json:"target"`
	Solutions []engine.Solution `json:"solutions"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Request recipes for one UMF",
		Long: `Send one UMF to the solver and print the ranked recipes, each with its
per-oxide difference from the target.

--umf takes a JSON object, a shared location or a bare fragment token.

Examples:
  glaze solve --umf '{"CaO":0.7,"K2O":0.3,"Al2O3":0.4,"SiO2":3}'
  glaze solve --umf 'glaze://recipe/#%7B%22SiO2%22%3A3%7D' --format json
  glaze solve --umf '{"SiO2":3,"CaO":1}' --exclude Whiting --record`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.UMF, "umf", "", "target UMF (required)")
	cmd.Flags().IntVar(&opts.MaxSolutions, "max-solutions", 0, "number of recipes to request (default from config)")
	cmd.Flags().BoolVar(&opts.MinMaterials, "min-materials", true, "prefer recipes with fewer materials")
	cmd.Flags().Float64Var(&opts.ErrorTolerance, "tolerance", 0, "accepted error (default from config)")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "materials the recipes must not use")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "append the result to the solve history")
	_ = cmd.MarkFlagRequired("umf")

	return cmd
}

func runSolve(opts *SolveOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	target, err := parseUMFArg(opts.UMF)
	if err != nil {
		return f.Fail(ExitCommandError, "invalid --umf", err)
	}

	req := solver.Request{
		UMF:               target,
		MaxSolutions:      cfg.MaxSolutions,
		MinMaterials:      cfg.MinMaterials,
		ErrorTolerance:    cfg.ErrorTolerance,
		ExcludedMaterials: opts.Exclude,
		Token:             engine.UUIDv7Generator{}.Generate(),
	}
	if cmd.Flags().Changed("max-solutions") {
		req.MaxSolutions = opts.MaxSolutions
	}
	if cmd.Flags().Changed("min-materials") {
		req.MinMaterials = opts.MinMaterials
	}
	if cmd.Flags().Changed("tolerance") {
		req.ErrorTolerance = opts.ErrorTolerance
	}

	ctx := commandContext(cmd)

	f.VerboseLog("solving %s against %s", target, cfg.Server)
	started := time.Now()
	cands, solveErr := newSolverClient(cfg).Solve(ctx, req)
	elapsed := time.Since(started)

	var sols []engine.Solution
	if solveErr == nil {
		for _, c := range solution.Exclude(solution.Rank(cands), opts.Exclude) {
			sols = append(sols, engine.Solution{Candidate: c, Comparison: solution.Compare(c.RecipeUMF, target)})
		}
	}

	if opts.Record {
		if err := recordSolve(ctx, cfg, req, sols, solveErr, elapsed); err != nil {
			slog.Warn("solve not recorded", "error", err)
		}
	}
	if solveErr != nil {
		return f.Fail(ExitFailure, "solve failed", solveErr)
	}

	tag, _ := status.ParseLocale(cfg.Locale)
	p := status.NewPrinter(tag)
	return f.Result(SolveResult{Target: target, Solutions: sols}, formatSolutions(sols, p))
}

func formatSolutions(sols []engine.Solution, p *status.Printer) string {
	if len(sols) == 0 {
		return p.Sprintf(status.NoSolutions) + "\n"
	}
	blocks := make([]string, 0, len(sols))
	for i, sol := range sols {
		blocks = append(blocks, tui.RenderSolution(i, sol, true, nil, tui.PlainStyles(), p))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func recordSolve(ctx context.Context, cfg config.Config, req solver.Request, sols []engine.Solution, solveErr error, elapsed time.Duration) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	last, err := st.LastSeq(ctx)
	if err != nil {
		return err
	}
	rec := store.SolveRecord{
		Seq:          last + 1,
		RequestToken: req.Token,
		UMF:          req.UMF.String(),
		Solutions:    len(sols),
		Duration:     elapsed,
		CreatedAt:    time.Now(),
	}
	switch {
	case solveErr != nil:
		rec.Outcome = store.OutcomeError
		rec.Message = solveErr.Error()
	case len(sols) == 0:
		rec.Outcome = store.OutcomeEmpty
	default:
		rec.Outcome = store.OutcomeOK
		best := sols[0].Candidate.Error
		rec.BestError = &best
	}
	_, err = st.AppendSolve(ctx, rec)
	return err
}

// openStore opens the configured database, creating its directory.
func openStore(cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return store.Open(cfg.Database)
}

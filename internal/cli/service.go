package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/tui"
)

// HealthResult is the JSON payload of the health command.
type HealthResult struct {
	Server    string `json:"server"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the solver answers",
		Long: `Call the solver's health endpoint.

Exit codes:
  0 - solver healthy
  1 - solver unreachable or unhealthy
  2 - command error (bad config, etc.)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			setupLogging(rootOpts, cmd.ErrOrStderr())
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			started := time.Now()
			if err := newSolverClient(cfg).Health(commandContext(cmd)); err != nil {
				return f.Fail(ExitFailure, "health check failed", err)
			}
			res := HealthResult{Server: cfg.Server, Status: "ok", LatencyMS: time.Since(started).Milliseconds()}
			return f.Result(res, fmt.Sprintf("%s ok (%d ms)\n", res.Server, res.LatencyMS))
		},
	}
}

// MassesOptions holds flags for the masses command.
type MassesOptions struct {
	*RootOptions
	Builtin bool
}

// MassEntry is one row of the masses command output.
type MassEntry struct {
	Oxide     string      `json:"oxide"`
	MolarMass float64     `json:"molar_mass"`
	Group     oxide.Group `json:"group"`
}

// NewMassesCommand creates the masses command.
func NewMassesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MassesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "masses",
		Short: "List the oxide molar masses the solver knows",
		Long: `List oxide molar masses with the group each oxide classifies into.

With --builtin the table compiled into glaze is shown instead; it is what the
editor falls back to when the solver cannot be reached.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMasses(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Builtin, "builtin", false, "show the built-in table without contacting the solver")

	return cmd
}

func runMasses(opts *MassesOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	reg := oxide.Default()
	if !opts.Builtin {
		cfg, err := loadConfig(opts.RootOptions)
		if err != nil {
			return err
		}
		reg, err = newSolverClient(cfg).MolarMasses(commandContext(cmd))
		if err != nil {
			return f.Fail(ExitFailure, "molar masses unavailable", err)
		}
	}

	entries := make([]MassEntry, 0, reg.Len())
	var b strings.Builder
	for _, e := range reg.Entries() {
		g := oxide.Classify(e.Symbol)
		entries = append(entries, MassEntry{Oxide: e.Symbol, MolarMass: e.MolarMass, Group: g})
		fmt.Fprintf(&b, "%s %10.4f  %s\n", tui.Pad(oxide.DisplayName(e.Symbol), 8), e.MolarMass, g.Title())
	}
	return f.Result(entries, b.String())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/glaze/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit    int
	Database string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent solve requests",
		Long: `Show the solve log, newest first. Every request the editor issues is logged
with its sequence number, outcome and best error, including responses that
arrived too late and were discarded (outcome "stale").`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of entries")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	st, err := openStore(cfg)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	records, err := st.RecentSolves(commandContext(cmd), opts.Limit)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to read history", err)
	}
	return f.Result(records, formatHistory(records))
}

func formatHistory(records []store.SolveRecord) string {
	if len(records) == 0 {
		return "No solves recorded.\n"
	}
	var b strings.Builder
	for _, r := range records {
		best := "-"
		if r.BestError != nil {
			best = fmt.Sprintf("%.2f%%", *r.BestError*100)
		}
		fmt.Fprintf(&b, "#%-5d %s  %-6s %3d  %7s  %6dms  %s\n",
			r.Seq, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Outcome, r.Solutions, best, r.Duration.Milliseconds(), r.UMF)
		if r.Message != "" {
			fmt.Fprintf(&b, "       %s\n", r.Message)
		}
	}
	return b.String()
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/glaze/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Path   string         `json:"path"`
	Config *config.Config `json:"config,omitempty"`
	Errors []string       `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a config file",
		Long: `Check a config file against the config schema and the rules the schema
cannot express (URL syntax, known locales, positive limits).

Without an argument the --config file, or the default config file, is checked.
The effective settings (defaults merged with the file) are printed on success.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.ConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.DefaultPath()
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		if err := formatter.Error("E_NOT_FOUND", fmt.Sprintf("cannot read %s: %v", path, err), nil); err != nil {
			return err
		}
		exitErr := WrapExitError(ExitCommandError, "cannot read config", err)
		exitErr.Reported = true
		return exitErr
	}
	formatter.VerboseLog("Validating %s (%d bytes)", path, len(data))

	cfg, err := config.Parse(data)
	if err != nil {
		res := ValidationResult{Valid: false, Path: path, Errors: splitErrors(err)}
		if formatter.IsJSON() {
			if outErr := formatter.Error("E_INVALID_CONFIG", "config is invalid", res); outErr != nil {
				return outErr
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", path)
			for _, e := range res.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
			}
		}
		exitErr := WrapExitError(ExitFailure, "config is invalid", err)
		exitErr.Reported = true
		return exitErr
	}

	res := ValidationResult{Valid: true, Path: path, Config: &cfg}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s\n", path)
	fmt.Fprintf(&b, "  server       %s\n", cfg.Server)
	fmt.Fprintf(&b, "  persistence  %s\n", cfg.Persistence)
	fmt.Fprintf(&b, "  layout       %s\n", cfg.Layout)
	fmt.Fprintf(&b, "  locale       %s\n", cfg.Locale)
	fmt.Fprintf(&b, "  quiet period %s\n", cfg.QuietPeriod())
	return formatter.Result(res, b.String())
}

// splitErrors turns a multi-line schema report into one entry per line.
func splitErrors(err error) []string {
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

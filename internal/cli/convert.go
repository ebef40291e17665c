package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/tui"
	"github.com/roach88/glaze/internal/umf"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	UMF     string
	Weights string
	Remote  bool
}

// ConvertResult is the JSON payload of the convert command. Both sides are
// present: the input and the converted form.
type ConvertResult struct {
	UMF     *umf.UMF           `json:"umf"`
	Weights map[string]float64 `json:"weights"`
	Source  string             `json:"source"` // "builtin" or the solver URL
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between UMF ratios and weight percent",
		Long: `Convert a UMF into oxide weight percentages, or weight percentages into a
UMF. Conversion uses the built-in molar mass table unless --remote asks the
solver to do it.

Examples:
  glaze convert --umf '{"CaO":1,"SiO2":3}'
  glaze convert --weights '{"CaO":23.7,"SiO2":76.3}' --remote`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.UMF, "umf", "", "UMF to convert to weight percent")
	cmd.Flags().StringVar(&opts.Weights, "weights", "", "weight percentages to convert to a UMF")
	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "convert with the solver instead of the built-in table")
	cmd.MarkFlagsMutuallyExclusive("umf", "weights")
	cmd.MarkFlagsOneRequired("umf", "weights")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	var res ConvertResult
	var err error
	if opts.Remote {
		res, err = convertRemote(opts, cmd)
	} else {
		res, err = convertLocal(opts)
	}
	if err != nil {
		return err
	}

	var b strings.Builder
	if opts.UMF != "" {
		writeTable(&b, umf.FromMap(res.Weights), "%8.3f%%")
	} else {
		writeTable(&b, res.UMF, "%8.3f")
	}
	return f.Result(res, b.String())
}

func convertLocal(opts *ConvertOptions) (ConvertResult, error) {
	reg := oxide.Default()
	res := ConvertResult{Source: "builtin"}
	if opts.UMF != "" {
		u, err := parseUMFArg(opts.UMF)
		if err != nil {
			return res, WrapExitError(ExitCommandError, "invalid --umf", err)
		}
		weights, err := reg.ToWeights(u.Map())
		if err != nil {
			return res, WrapExitError(ExitCommandError, "conversion failed", err)
		}
		res.UMF, res.Weights = u, weights
		return res, nil
	}
	weights, err := parseWeightsArg(opts.Weights)
	if err != nil {
		return res, WrapExitError(ExitCommandError, "invalid --weights", err)
	}
	ratios, err := reg.FromWeights(weights)
	if err != nil {
		return res, WrapExitError(ExitCommandError, "conversion failed", err)
	}
	res.UMF, res.Weights = umf.FromMap(ratios), weights
	return res, nil
}

func convertRemote(opts *ConvertOptions, cmd *cobra.Command) (ConvertResult, error) {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return ConvertResult{}, err
	}
	client := newSolverClient(cfg)
	ctx := commandContext(cmd)
	res := ConvertResult{Source: client.BaseURL()}

	if opts.UMF != "" {
		u, err := parseUMFArg(opts.UMF)
		if err != nil {
			return res, f.Fail(ExitCommandError, "invalid --umf", err)
		}
		weights, err := client.UMFToWeights(ctx, u)
		if err != nil {
			return res, f.Fail(ExitFailure, "conversion failed", err)
		}
		res.UMF, res.Weights = u, weights
		return res, nil
	}
	weights, err := parseWeightsArg(opts.Weights)
	if err != nil {
		return res, f.Fail(ExitCommandError, "invalid --weights", err)
	}
	u, err := client.WeightsToUMF(ctx, weights)
	if err != nil {
		return res, f.Fail(ExitFailure, "conversion failed", err)
	}
	res.UMF, res.Weights = u, weights
	return res, nil
}

// writeTable prints u in form order: alkalis, the rest of R2O/RO, R2O3, RO2.
func writeTable(b *strings.Builder, u *umf.UMF, valueFormat string) {
	for _, field := range umf.FieldsOf(u) {
		fmt.Fprintf(b, "%s "+valueFormat+"\n", tui.Pad(oxide.DisplayName(field.Oxide), 8), field.Value)
	}
}

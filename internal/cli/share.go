package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/glaze/internal/config"
	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/umf"
)

// ShareResult is the JSON payload of the share subcommands.
type ShareResult struct {
	Location string   `json:"location"`
	Token    string   `json:"token"`
	UMF      *umf.UMF `json:"umf"`
}

// NewShareCommand creates the share command and its subcommands.
func NewShareCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode, decode and open shareable formula locations",
		Long: `A formula is shared as a location: the configured base URL followed by '#'
and the percent-encoded JSON of the UMF. The editor keeps its current
location in the location file; writing a new one there (share open) makes a
running editor reload it.`,
	}

	var umfArg string
	encode := &cobra.Command{
		Use:           "encode",
		Short:         "Print the location for a UMF",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			u, err := parseUMFArg(umfArg)
			if err != nil {
				return f.Fail(ExitCommandError, "invalid --umf", err)
			}
			res, err := shareResult(cfg, u)
			if err != nil {
				return f.Fail(ExitCommandError, "encode failed", err)
			}
			return f.Result(res, res.Location+"\n")
		},
	}
	encode.Flags().StringVar(&umfArg, "umf", "", "UMF as a JSON object (required)")
	_ = encode.MarkFlagRequired("umf")

	decode := &cobra.Command{
		Use:           "decode <location-or-token>",
		Short:         "Print the UMF a location carries",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			u, err := parseUMFArg(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, "invalid location", err)
			}
			res, err := shareResult(cfg, u)
			if err != nil {
				return f.Fail(ExitCommandError, "encode failed", err)
			}
			var b strings.Builder
			writeTable(&b, u, "%8.3f")
			return f.Result(res, b.String())
		},
	}

	open := &cobra.Command{
		Use:   "open <location-or-token>",
		Short: "Make the editor show a shared formula",
		Long: `Write the formula to the location file. A running editor notices the change
and loads it; otherwise it is loaded on the next start.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			u, err := parseUMFArg(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, "invalid location", err)
			}
			res, err := shareResult(cfg, u)
			if err != nil {
				return f.Fail(ExitCommandError, "encode failed", err)
			}
			ch := persist.NewFragmentChannel(cfg.LocationFile, cfg.BaseURL)
			if err := ch.Write(commandContext(cmd), res.Token); err != nil {
				return f.Fail(ExitCommandError, "write location", err)
			}
			f.VerboseLog("wrote %s", ch.Path())
			return f.Result(res, res.Location+"\n")
		},
	}

	current := &cobra.Command{
		Use:           "current",
		Short:         "Print the editor's current location",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			ch := persist.NewFragmentChannel(cfg.LocationFile, cfg.BaseURL)
			token, ok, err := ch.Read(commandContext(cmd))
			if err != nil {
				return f.Fail(ExitCommandError, "read location", err)
			}
			if !ok {
				return f.Fail(ExitFailure, "no location", &umf.InputParseError{Text: ch.Path(), Reason: "no formula saved yet"})
			}
			u, err := persist.FragmentCodec{}.Decode(token)
			if err != nil {
				return f.Fail(ExitFailure, "stored location unreadable", err)
			}
			return f.Result(ShareResult{Location: ch.Location(token), Token: token, UMF: u}, ch.Location(token)+"\n")
		},
	}

	cmd.AddCommand(encode, decode, open, current)
	return cmd
}

func shareResult(cfg config.Config, u *umf.UMF) (ShareResult, error) {
	token, err := persist.FragmentCodec{}.Encode(u)
	if err != nil {
		return ShareResult{}, err
	}
	ch := persist.NewFragmentChannel(cfg.LocationFile, cfg.BaseURL)
	return ShareResult{Location: ch.Location(token), Token: token, UMF: u}, nil
}

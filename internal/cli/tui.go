package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/glaze/internal/config"
	"github.com/roach88/glaze/internal/engine"
	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/store"
	"github.com/roach88/glaze/internal/tui"
	"github.com/roach88/glaze/internal/umf"
)

// TUIOptions holds flags for the tui command.
type TUIOptions struct {
	*RootOptions
	Persistence      string
	Layout           string
	LocationFile     string
	Database         string
	LogFile          string
	DisableMaterials bool
}

// NewTUICommand creates the interactive editor command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TUIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a UMF and browse recipes interactively",
		Long: `Start the interactive editor.

Edits are solved after a short quiet period; the newest request always wins.
The formula is kept between runs according to --persistence:

  fragment  in the location file, as a shareable "<base>#<token>" location
            (edits made to the file while the editor runs are picked up)
  local     in the SQLite database
  none      not kept

Logs go to a file so they do not disturb the screen.

Example:
  glaze tui
  glaze tui --persistence local --layout fixed --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Persistence, "persistence", "", "fragment|local|none (default from config)")
	cmd.Flags().StringVar(&opts.Layout, "layout", "", "dynamic|fixed (default from config)")
	cmd.Flags().StringVar(&opts.LocationFile, "location", "", "location file for fragment persistence")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "log file (default glaze.log next to the config)")
	cmd.Flags().BoolVar(&opts.DisableMaterials, "disable-materials", false, "allow excluding materials from recipes")

	return cmd
}

func runTUI(opts *TUIOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	applyTUIFlags(opts, cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	logPath := opts.LogFile
	if logPath == "" {
		logPath = filepath.Join(config.Dir(), "glaze.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create log directory", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer logFile.Close()
	setupLogging(opts.RootOptions, logFile)

	slog.Info("opening database", "path", cfg.Database)
	st, err := openStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng, fragment, err := buildEngine(ctx, cfg, st)
	if err != nil {
		return err
	}
	bridge := tui.NewBridge()
	eng.Subscribe(bridge.Publish)

	if err := eng.Init(ctx); err != nil {
		return WrapExitError(ExitCommandError, "engine init", err)
	}

	tag, _ := status.ParseLocale(cfg.Locale)
	model := tui.New(eng.Send, status.NewPrinter(tag), tui.DefaultStyles())
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return bridge.Forward(gctx, program.Send) })
	if fragment != nil {
		g.Go(func() error {
			return fragment.Watch(gctx, func(token string) {
				slog.Debug("location changed outside the editor")
				eng.Send(engine.ExternalChange(token))
			})
		})
	}
	g.Go(func() error {
		// Quitting the program ends the session.
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "editor error", err)
	}
	slog.Info("editor stopped")
	return nil
}

func applyTUIFlags(opts *TUIOptions, cmd *cobra.Command, cfg *config.Config) {
	if opts.Persistence != "" {
		cfg.Persistence = opts.Persistence
	}
	if opts.Layout != "" {
		cfg.Layout = opts.Layout
	}
	if opts.LocationFile != "" {
		cfg.LocationFile = opts.LocationFile
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if cmd.Flags().Changed("disable-materials") {
		cfg.DisableMaterials = opts.DisableMaterials
	}
}

// buildEngine wires the solver client, the solve log and the persistence
// channel into an engine whose clock continues from the log. fragment is
// non-nil when the location file should be watched.
func buildEngine(ctx context.Context, cfg config.Config, st *store.Store) (*engine.Engine, *persist.FragmentChannel, error) {
	strategy, err := persist.ParseStrategy(cfg.Persistence)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid persistence", err)
	}
	layout, err := umf.ParseLayout(cfg.Layout)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid layout", err)
	}
	last, err := st.LastSeq(ctx)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to read solve log", err)
	}

	engOpts := []engine.EngineOption{
		engine.WithRecorder(st),
		engine.WithClock(engine.NewClockAt(last)),
	}
	var fragment *persist.FragmentChannel
	switch strategy {
	case persist.StrategyFragment:
		fragment = persist.NewFragmentChannel(cfg.LocationFile, cfg.BaseURL)
		engOpts = append(engOpts, engine.WithPersistence(persist.FragmentCodec{}, fragment))
	case persist.StrategyLocal:
		engOpts = append(engOpts, engine.WithPersistence(persist.JSONCodec{}, persist.NewLocalChannel(st)))
	}
	slog.Info("engine configured",
		"server", cfg.Server, "persistence", strategy, "layout", layout, "resume_seq", last)

	eng := engine.New(newSolverClient(cfg), engine.Options{
		Layout:           layout,
		DisableMaterials: cfg.DisableMaterials,
		QuietPeriod:      cfg.QuietPeriod(),
		MaxSolutions:     cfg.MaxSolutions,
		ErrorTolerance:   cfg.ErrorTolerance,
		MinMaterials:     cfg.MinMaterials,
		RequestTimeout:   cfg.RequestTimeout(),
		ServerURL:        cfg.Server,
	}, engOpts...)
	return eng, fragment, nil
}

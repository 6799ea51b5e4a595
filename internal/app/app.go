package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/five82/tiffin/internal/config"
	"github.com/five82/tiffin/internal/creds"
	"github.com/five82/tiffin/internal/logging"
	"github.com/five82/tiffin/internal/prefs"
	"github.com/five82/tiffin/internal/session"
	"github.com/five82/tiffin/internal/state"
	"github.com/five82/tiffin/internal/swiggy"
	"github.com/five82/tiffin/internal/ui"
)

// ErrReported marks errors that were already shown to the user.
var ErrReported = errors.New("command failed")

// Options configure the command tree. Nil streams use the process's own.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// HTTP replaces the default client, mainly for tests.
	HTTP swiggy.HTTPDoer
}

// Run executes the tiffin command line in args until the command finishes or
// ctx is cancelled.
func Run(ctx context.Context, args []string, opts Options) error {
	root, e := newRootCommand(opts)
	defer e.close()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type globalFlags struct {
	configPath string
	lat        float64
	lng        float64
	logLevel   string
	logFile    string
}

// env is the per-invocation composition root, filled in by the root
// command's PersistentPreRunE.
type env struct {
	opts  Options
	flags globalFlags

	// fileLog forces logging to the log file, set by monitor --tui.
	fileLog bool

	cfg       config.Config
	prefs     prefs.Prefs
	theme     ui.Theme
	logger    *log.Logger
	logCloser io.Closer
	extractor *creds.Extractor
	store     *state.Store
	client    *swiggy.Client
	out       *ui.Printer
	errOut    *ui.Printer
}

func newRootCommand(opts Options) (*cobra.Command, *env) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "tiffin",
		Short:         "Search restaurants, place and track food orders from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errors.New("no command given")
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&e.flags.configPath, "config", "", "config file (default ~/.config/tiffin/config.toml)")
	flags.Float64Var(&e.flags.lat, "lat", 0, "delivery latitude (overrides config)")
	flags.Float64Var(&e.flags.lng, "lng", 0, "delivery longitude (overrides config)")
	flags.StringVar(&e.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&e.flags.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newLoginCommand(e),
		newLogoutCommand(e),
		newSearchCommand(e),
		newMenuCommand(e),
		newStatusCommand(e),
		newMonitorCommand(e),
		newOrdersCommand(e),
		newOrderCommand(e),
		newLogsCommand(e),
	)
	return root, e
}

// setup loads configuration and wires the logger, session store, executor
// and client for the command about to run.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(e.flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("lat") {
		cfg.Latitude = e.flags.lat
	}
	if flags.Changed("lng") {
		cfg.Longitude = e.flags.lng
	}
	if e.flags.logLevel != "" {
		cfg.Log.Level = e.flags.logLevel
	}
	if e.flags.logFile != "" {
		path, err := config.ExpandPath(e.flags.logFile)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		cfg.Log.File = path
	}
	e.cfg = cfg

	p, prefsErr := prefs.Load("")
	e.prefs = p
	e.theme = resolveTheme(cfg.Theme, e.prefs)
	e.out = ui.NewPrinter(e.opts.Stdout, e.theme)
	e.errOut = ui.NewPrinter(e.opts.Stderr, e.theme)

	logOpts := logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Console: e.opts.Stderr}
	if e.fileLog {
		logOpts.File = cfg.LogPath()
	}
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	e.logger, e.logCloser = logger, closer
	if prefsErr != nil {
		e.logger.Warn().Err(prefsErr).Msg("load preferences failed; using defaults")
	}
	e.logger.Debug().Str("command", cmd.Name()).Str("api", cfg.APIBase()).Msg("tiffin started")

	backend, err := session.New(cfg.Session, logger)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	e.store = state.New(cmd.Context(), backend, logger)
	e.extractor = creds.NewExtractor(cfg.Credentials.RoleMap())

	doer := e.opts.HTTP
	if doer == nil {
		doer = &http.Client{Timeout: cfg.RequestTimeout}
	}
	exec, err := swiggy.NewExecutor(swiggy.ExecutorOptions{
		BaseURL:           cfg.APIBase(),
		UserAgent:         cfg.UserAgent,
		Referer:           cfg.Referer,
		PendingAuthStatus: cfg.PendingAuthStatus,
		RateLimit:         cfg.RateLimit,
		Extractor:         e.extractor,
		HTTP:              doer,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("init api executor: %w", err)
	}
	coords := swiggy.Coordinates{Lat: cfg.Latitude, Lng: cfg.Longitude}
	e.client, err = swiggy.NewClient(exec, e.store, coords, cfg.Credentials.Bearer)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	return nil
}

// resolveTheme prefers an explicit config theme over the one last picked in
// the monitor view.
func resolveTheme(configured string, p prefs.Prefs) ui.Theme {
	name := strings.TrimSpace(configured)
	if name == "" || strings.EqualFold(name, "auto") {
		name = p.Theme
	}
	return ui.GetTheme(name)
}

// savePrefs applies fn to the stored preferences. Failures only warn.
func (e *env) savePrefs(fn func(*prefs.Prefs)) {
	fn(&e.prefs)
	if err := prefs.Update("", fn); err != nil {
		e.logger.Warn().Err(err).Msg("save preferences failed")
	}
}

// orderArg returns the order id argument, falling back to the last order
// placed from this machine.
func (e *env) orderArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if e.prefs.LastOrderID == "" {
		return "", errors.New("no order id given and no previous order recorded")
	}
	e.out.Info("Using last order %s", e.prefs.LastOrderID)
	return e.prefs.LastOrderID, nil
}

func (e *env) close() error {
	if e.logCloser == nil {
		return nil
	}
	err := e.logCloser.Close()
	e.logCloser = nil
	return err
}

// fail shows err to the user and marks it reported. A failure caused by
// the user cancelling is not an error.
func (e *env) fail(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	e.logger.Warn().Err(err).Msg("command failed")
	e.errOut.Error(err)
	return fmt.Errorf("%w: %w", ErrReported, err)
}

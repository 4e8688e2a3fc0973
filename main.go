package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bekirdag/propbook/internal/config"
	"github.com/bekirdag/propbook/internal/inventory"
	"github.com/bekirdag/propbook/internal/logging"
	"github.com/bekirdag/propbook/internal/prefs"
	"github.com/bekirdag/propbook/internal/theme"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootOptions holds the global flags and what PersistentPreRunE builds from
// them.
type rootOptions struct {
	configPath string
	theme      string
	dataDir    string
	verbose    bool
	ephemeral  bool

	cfg       config.Config
	logger    *zap.Logger
	sessionID string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "propbook",
		Short: "Property accountability dashboard",
		Long: `propbook tracks equipment on hand receipt, sensitive items and the
activity log of a unit property book.

Run without arguments to start the interactive dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.theme, "theme", "", "Theme: light or dark (default: saved or detected)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory with YAML dataset overrides")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep preferences in memory only")

	root.AddCommand(newListCmd(opts), newExportCmd(opts), newAuditCmd(opts), newInitCmd(opts), newVersionCmd())
	return root
}

// setup loads the config file, applies flag overrides and builds the logger.
func (o *rootOptions) setup() error {
	if o.configPath == "" {
		o.configPath = config.DefaultPath()
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.theme != "" {
		if _, ok := theme.ParseMode(o.theme); !ok {
			return fmt.Errorf("unknown theme %q (want light or dark)", o.theme)
		}
		cfg.Theme = o.theme
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	o.cfg = cfg

	logger, err := logging.New(logging.Options{Path: cfg.LogFile, Verbose: o.verbose, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	o.sessionID = uuid.NewString()
	o.logger = logger.With(zap.String("session_id", o.sessionID))
	return nil
}

// openPrefs returns the SQLite store under the config dir, or an in-memory
// store when --ephemeral is set or the database cannot be opened.
func (o *rootOptions) openPrefs() (prefs.Store, func()) {
	if o.ephemeral {
		return prefs.NewMemoryStore(), func() {}
	}
	store, err := prefs.OpenSQLite(filepath.Join(config.Dir(), "prefs.sqlite"))
	if err != nil {
		o.logger.Warn("preferences unavailable, using memory", zap.Error(err))
		return prefs.NewMemoryStore(), func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			o.logger.Warn("close preferences", zap.Error(err))
		}
	}
}

// themeMode picks the flag or config theme, then the saved one, then the
// terminal's.
func (o *rootOptions) themeMode(store prefs.Store) theme.Mode {
	if mode, ok := theme.ParseMode(o.cfg.Theme); ok {
		return mode
	}
	return theme.Load(store, theme.Detect())
}

func runDashboard(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, closeStore := opts.openPrefs()
	defer closeStore()

	mode := opts.themeMode(store)
	setMarkdownTheme(mode)

	app := &appContext{
		cfg:    opts.cfg,
		mode:   mode,
		styles: newStyles(mode),
		logger: opts.logger,
		audit:  newAuditLogger(opts.cfg.AuditFile, opts.sessionID, opts.cfg.Actor, opts.logger),
		now:    time.Now,
		copy:   clipboard.WriteAll,
	}
	opts.logger.Info("starting dashboard",
		zap.String("theme", string(mode)),
		zap.String("data_dir", opts.cfg.DataDir))

	program := tea.NewProgram(
		newModel(ctx, app, store),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if dir := opts.cfg.DataDir; dir != "" {
		w, err := inventory.Watch(ctx, dir, inventory.DefaultDebounce, opts.logger, func() {
			program.Send(diskChangedMsg{})
		})
		if err != nil {
			opts.logger.Warn("data dir not watched", zap.String("dir", dir), zap.Error(err))
		} else {
			defer func() {
				cancel()
				<-w.Done()
			}()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// Package cli wires the journal into a cobra command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tradejournal/config"
	"tradejournal/internal/adapters/logger"
	"tradejournal/internal/adapters/sqlite"
	"tradejournal/internal/app"
)

// RootOptions are the persistent flags shared by every subcommand.
type RootOptions struct {
	DBPath   string
	LogLevel string
}

// NewRootCmd builds the journal command tree.
func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "journal",
		Short:         "Trading journal: record trades, partial closes and review results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flags override the environment configuration when set.
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite journal database (default $DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug|info|warn|error (default $LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(opts),
		newTradesCmd(opts),
		newSummaryCmd(opts),
		newWinLossCmd(opts),
		newStatsCmd(opts),
		newCalcCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
	)

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtime holds the wired application for one command invocation.
type runtime struct {
	cfg    *config.Config
	logger *logger.ZeroLogger
	repo   *sqlite.Repository
	svc    *app.JournalService
}

// openRuntime loads configuration, opens the database and loads the trade book.
func openRuntime(ctx context.Context, opts *RootOptions, logOut io.Writer) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = logger.ParseLevel(opts.LogLevel)
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: logOut})
	appLogger.Debug(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		UserID: cfg.UserID,
		Logger: appLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database repository: %w", err)
	}

	svc, err := app.NewJournalService(cfg, appLogger, repo, repo, repo, repo)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize journal service: %w", err)
	}
	if err := svc.Load(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, logger: appLogger, repo: repo, svc: svc}, nil
}

func (r *runtime) Close() {
	if err := r.repo.Close(); err != nil {
		r.logger.Error(context.Background(), err, "Error closing database repository")
	}
}

// withRuntime runs fn against a freshly opened runtime.
func withRuntime(cmd *cobra.Command, opts *RootOptions, fn func(rt *runtime) error) error {
	rt, err := openRuntime(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

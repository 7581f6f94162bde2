// Package cli is the cobra front end. It only calls the engine's public
// operations; all execution logic lives in internal/engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/aqasim81/schemaflow/internal/config"
	"github.com/aqasim81/schemaflow/internal/database"
	"github.com/aqasim81/schemaflow/internal/engine"
	"github.com/aqasim81/schemaflow/internal/logging"
	"github.com/aqasim81/schemaflow/internal/validator/rules"
)

const version = "0.1.0"

// errDatabaseURLRequired is returned when no database URL is configured.
var errDatabaseURLRequired = errors.New(
	"database URL is required (set --database-url, SCHEMAFLOW_DATABASE_URL, or database_url in config)",
)

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// rootCmd is the base command for the schemaflow CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "schemaflow",
	Version: version,
	Short:   "Versioned PostgreSQL schema migrations with drift detection",
	Long: `schemaflow applies and reverses versioned SQL migrations, tracks
what has been applied, detects edited migrations via checksums, and uses a
PostgreSQL advisory lock to keep concurrent deploys from racing each other.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", "schemaflow.yml", "path to configuration file")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().String("migrations-dir", "", "path to migration files")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with precedence: flag > env > file.
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("database-url") {
		cfg.DatabaseURL, _ = cmd.Flags().GetString("database-url")
	}

	if cmd.Flags().Changed("migrations-dir") {
		cfg.MigrationsDir, _ = cmd.Flags().GetString("migrations-dir")
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	}
}

// newEngine connects to the database and constructs an engine from the
// loaded configuration. The caller owns the returned pool.
func newEngine(ctx context.Context, cfg *config.Config, out func(string, ...any)) (*engine.Engine, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errDatabaseURLRequired
	}

	out("Connecting to %s\n", config.RedactURL(cfg.DatabaseURL))

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	eng, err := engine.New(engine.Config{
		Pool:           pool,
		Dir:            cfg.MigrationsDir,
		Table:          cfg.Table,
		LockID:         cfg.LockID,
		DisableLocking: cfg.DisableLocking,
		Logger:         logging.NewStd("[schemaflow] ", cfg.Verbose),
		Registry:       rules.NewDefaultRegistry(),
	})
	if err != nil {
		pool.Close()

		return nil, nil, err
	}

	return eng, pool, nil
}

// cmdContext returns the command's context, falling back to Background.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schemaflow/internal/engine"
)

// errMigrationFailed is returned when a batch stops on a failing migration.
var errMigrationFailed = errors.New("migration batch stopped on failure")

var upCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply every pending migration in ascending version order. The batch
stops at the first failure; migrations committed before it stay committed.`,
	RunE: runUp,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	upCmd.Flags().Bool("dry-run", false, "show what would be applied without executing")
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx := cmdContext(cmd)

	eng, pool, err := newEngine(ctx, AppConfig, func(format string, args ...any) {
		fmt.Fprintf(out, format, args...)
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	summary, err := eng.Migrate(ctx, engine.Options{DryRun: dryRun})
	if err != nil {
		return err
	}

	printRunSummary(out, summary)

	if summary.Failed != nil {
		return errMigrationFailed
	}

	return nil
}

func printRunSummary(out io.Writer, summary *engine.RunSummary) {
	if summary.DryRun {
		fmt.Fprintln(out, "--- DRY RUN (no changes will be made) ---")
	}

	for _, res := range summary.Results {
		if res.Success {
			fmt.Fprintf(out, "  %s_%s ... done (%dms)\n", res.Version, res.Name, res.ExecutionTimeMs)
		} else {
			fmt.Fprintf(out, "  %s_%s ... FAILED\n    Error: %v\n", res.Version, res.Name, res.Err)
		}
	}

	fmt.Fprintf(out, "\nApplied %d of %d pending migration(s).\n",
		summary.TotalApplied, summary.TotalPending)
}

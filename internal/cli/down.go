package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schemaflow/internal/engine"
)

var downCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "down",
	Short: "Roll back applied migrations",
	Long: `Roll back the most recently applied migrations, newest first. Each
migration needs its file on disk and a non-empty down section.`,
	RunE: runDown,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	downCmd.Flags().Int("steps", 1, "number of migrations to roll back")
	downCmd.Flags().Bool("dry-run", false, "show what would be rolled back without executing")
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	steps, _ := cmd.Flags().GetInt("steps")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx := cmdContext(cmd)

	eng, pool, err := newEngine(ctx, AppConfig, func(format string, args ...any) {
		fmt.Fprintf(out, format, args...)
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	summary, err := eng.Rollback(ctx, steps, engine.Options{DryRun: dryRun})
	if err != nil {
		return err
	}

	if summary.DryRun {
		fmt.Fprintln(out, "--- DRY RUN (no changes will be made) ---")
	}

	for _, res := range summary.Results {
		if res.Success {
			fmt.Fprintf(out, "  %s_%s ... rolled back (%dms)\n", res.Version, res.Name, res.ExecutionTimeMs)
		} else {
			fmt.Fprintf(out, "  %s_%s ... FAILED\n    Error: %v\n", res.Version, res.Name, res.Err)
		}
	}

	fmt.Fprintf(out, "\nRolled back %d migration(s).\n", summary.TotalRolledBack)

	if summary.Failed != nil {
		return errMigrationFailed
	}

	return nil
}

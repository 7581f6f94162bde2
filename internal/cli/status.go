package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show migration status",
	Long: `Display every discovered migration with its applied state and flag
checksum drift for migrations edited after they were applied.`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ctx := cmdContext(cmd)

	eng, pool, err := newEngine(ctx, AppConfig, func(format string, args ...any) {
		fmt.Fprintf(out, format, args...)
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	statuses, err := eng.Status(ctx)
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		fmt.Fprintln(out, "No migration files found.")
		return nil
	}

	for _, st := range statuses {
		state := "pending"
		if st.Applied {
			state = fmt.Sprintf("applied %s (%dms)",
				st.AppliedAt.Format("2006-01-02 15:04:05"), st.ExecutionTimeMs)
		}

		drift := ""
		if st.ChecksumMismatch {
			drift = "  [CHECKSUM MISMATCH]"
		}

		fmt.Fprintf(out, "  %s_%s  %s%s\n", st.Version, st.Name, state, drift)
	}

	counts, err := eng.SummaryCounts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d total, %d applied, %d pending.\n",
		counts.Total, counts.Applied, counts.Pending)

	return nil
}

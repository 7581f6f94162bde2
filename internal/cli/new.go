package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schemaflow/internal/catalog"
)

var newCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "new <name>",
	Short: "Create a new migration file",
	Long: `Create a templated migration file in the migrations directory. The
name is sanitized to snake_case and prefixed with a timestamp version.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(newCmd)
}

// runNew writes the file directly through the catalog: creating a migration
// needs no database connection.
func runNew(cmd *cobra.Command, args []string) error {
	created, err := catalog.Create(AppConfig.MigrationsDir, args[0], time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", created.Path)

	return nil
}

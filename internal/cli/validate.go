package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schemaflow/internal/catalog"
	"github.com/aqasim81/schemaflow/internal/validator"
	"github.com/aqasim81/schemaflow/internal/validator/rules"
)

// errValidationFindings is returned when error-level findings were reported.
var errValidationFindings = errors.New("validation reported error-level findings")

var validateCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "validate",
	Short: "Scan migrations for SQL anti-patterns",
	Long: `Run the heuristic line scanner over every migration file and report
risky patterns. Findings are advisory and never block execution; the command
exits nonzero only so CI can notice error-level findings.`,
	RunE: runValidate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(validateCmd)
}

// runValidate scans files directly; validation needs no database connection.
func runValidate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	files, skipped, err := catalog.List(AppConfig.MigrationsDir)
	if err != nil {
		return err
	}

	for _, s := range skipped {
		fmt.Fprintf(out, "  %s: skipped (%s)\n", s.Filename, s.Reason)
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No migration files found.")
		return nil
	}

	v := validator.New(rules.NewDefaultRegistry())
	findings := make(map[string][]validator.Warning)

	for _, f := range files {
		if ws := v.Validate(f.UpSQL, f.DownSQL, f.Name); len(ws) > 0 {
			findings[f.Filename] = ws
		}
	}

	if len(findings) == 0 {
		fmt.Fprintf(out, "Checked %d migration(s): no findings.\n", len(files))
		return nil
	}

	filenames := make([]string, 0, len(findings))
	for name := range findings {
		filenames = append(filenames, name)
	}

	sort.Strings(filenames)

	hasErrors := false

	for _, filename := range filenames {
		fmt.Fprintf(out, "%s:\n", filename)

		for _, w := range findings[filename] {
			fmt.Fprintf(out, "  [%s] %s\n", w.Level, w.Message)

			if w.Level == validator.LevelError {
				hasErrors = true
			}
		}
	}

	if hasErrors {
		return errValidationFindings
	}

	return nil
}

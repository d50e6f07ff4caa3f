// Package check provides the check command implementation.
package check

import (
	"github.com/spf13/cobra"

	"github.com/halaqa/halaqa/internal/cmd/application"
	"github.com/halaqa/halaqa/internal/cmd/output"
	"github.com/halaqa/halaqa/pkg/consistency"
	"github.com/halaqa/halaqa/pkg/errors"
	"github.com/halaqa/halaqa/pkg/logging"
)

// Flags holds the check command flags.
type Flags struct {
	DayColumns int
}

// NewCommand creates the check command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "check [dir]",
		GroupID: "core",
		Short:   "Check that source sheets have the expected header",
		Args:    cobra.MaximumNArgs(1),
		Long: `Check walks the source tree and classifies every sheet as consistent
or inconsistent. A sheet is consistent when its second non-empty row starts
with the student, age and teacher labels and is followed by one hifz and
murajaah pair per day of the reporting period.

Inconsistent sheets are reported with their reason; they do not make the
command fail.`,
		Example: `  halaqa check                      # Check the configured source_dir
  halaqa check data/processed/1447  # Check one year
  halaqa check --day-columns 29     # Shorter reporting period
  halaqa check -o json              # Machine-readable report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := app.Settings().SourceDir
			if len(args) == 1 {
				root = args[0]
			}
			return Execute(cmd, app, root, flags)
		},
	}

	cmd.Flags().IntVar(&flags.DayColumns, "day-columns", 0, "number of day pairs expected in the header (default from config)")

	return cmd
}

// Execute scans root and writes the report to the command output.
func Execute(cmd *cobra.Command, app application.Application, root string, flags *Flags) error {
	schema := consistency.DefaultSchema()
	if days := app.Settings().DayColumns; days > 0 {
		schema.Days = days
	}
	if flags.DayColumns != 0 {
		if flags.DayColumns < 0 {
			return errors.NewValidationError("day-columns", flags.DayColumns, "must be positive")
		}
		schema.Days = flags.DayColumns
	}

	ctx := logging.WithRunID(logging.WithLogger(cmd.Context(), app.Logger()))
	ctx = logging.WithOperation(ctx, "check")
	report, err := consistency.New(app.Fs(), schema).Scan(ctx, root)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info().
		Int("total", report.Total).
		Int("inconsistent", report.Inconsistent).
		Msg("Consistency check complete")

	format := output.DetectFormat(app.OutputFormat())
	return output.Write(cmd.OutOrStdout(), format, report, output.CheckReportTables(report))
}

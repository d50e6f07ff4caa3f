// Package convert provides the convert command implementation.
package convert

import (
	"github.com/spf13/cobra"

	"github.com/halaqa/halaqa/internal/cmd/application"
	"github.com/halaqa/halaqa/internal/cmd/output"
	"github.com/halaqa/halaqa/pkg/logging"
	"github.com/halaqa/halaqa/pkg/reconciler"
)

// NewCommand creates the convert command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "convert [dir]",
		GroupID: "core",
		Short:   "Reconcile source sheets into identity and daily entry tables",
		Args:    cobra.MaximumNArgs(1),
		Long: `Convert reads every monthly sheet under the source directory in path
order, assigns stable ids to students and teachers and records one daily
entry per scored day.

Two layouts are supported:

  ledger   per-role ids in Person.csv; new entries are appended to
           DailyEntry.csv and duplicates of earlier runs are skipped
  monthly  signed ids in Users.csv (students positive, teachers negative);
           <output_dir>/<year>/<month>.csv is regenerated and the last
           row for a day wins

Sheets that cannot be read or have too few rows are reported and skipped.`,
		Example: `  halaqa convert                          # Convert the configured source_dir
  halaqa convert --year 1447              # Only data/processed/1447
  halaqa convert --layout monthly         # Signed ids, monthly outputs
  halaqa convert --dry-run -o yaml        # Preview without writing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.SourceDir = args[0]
			}
			return Execute(cmd, app, flags)
		},
	}

	flags = addFlags(cmd)

	return cmd
}

// Execute runs the engine and writes the run summary to the command output.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	opts, err := BuildOptions(app.Settings(), flags)
	if err != nil {
		return err
	}

	engine, err := reconciler.New(app.Fs(), opts...)
	if err != nil {
		return err
	}

	ctx := logging.WithRunID(logging.WithLogger(cmd.Context(), app.Logger()))
	ctx = logging.WithOperation(ctx, "convert")
	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	format := output.DetectFormat(app.OutputFormat())
	return output.Write(cmd.OutOrStdout(), format, result, output.ConvertResultTables(result))
}

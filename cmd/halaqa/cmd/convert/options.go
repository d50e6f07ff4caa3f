package convert

import (
	"github.com/spf13/cobra"

	"github.com/halaqa/halaqa/internal/cmd/application"
	"github.com/halaqa/halaqa/pkg/errors"
	"github.com/halaqa/halaqa/pkg/reconciler"
)

// Flags holds the convert command flags. Empty values fall back to the
// configured settings.
type Flags struct {
	SourceDir string
	Year      string
	Layout    string
	DryRun    bool
}

func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}
	cmd.Flags().StringVar(&flags.SourceDir, "source-dir", "", "root of the <year>/<month>.csv source tree")
	cmd.Flags().StringVar(&flags.Year, "year", "", "only convert this year partition")
	cmd.Flags().StringVar(&flags.Layout, "layout", "", "output layout: ledger or monthly")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "parse and report without writing")
	return flags
}

// BuildOptions merges settings and flags into engine options. Flags win.
func BuildOptions(settings application.Settings, flags *Flags) ([]reconciler.Option, error) {
	layoutName := settings.Layout
	if flags.Layout != "" {
		layoutName = flags.Layout
	}
	layout, err := reconciler.ParseLayout(layoutName)
	if err != nil {
		return nil, errors.NewConfigError("convert", "layout: "+layoutName, err)
	}

	opts := []reconciler.Option{reconciler.WithLayout(layout)}

	sourceDir := settings.SourceDir
	if flags.SourceDir != "" {
		sourceDir = flags.SourceDir
	}
	if sourceDir != "" {
		opts = append(opts, reconciler.WithSourceDir(sourceDir))
	}

	year := settings.Year
	if flags.Year != "" {
		year = flags.Year
	}
	if year != "" {
		opts = append(opts, reconciler.WithYear(year))
	}

	if settings.PersonFile != "" {
		opts = append(opts, reconciler.WithPersonFile(settings.PersonFile))
	}
	if settings.DailyFile != "" {
		opts = append(opts, reconciler.WithDailyFile(settings.DailyFile))
	}
	if settings.UsersFile != "" {
		opts = append(opts, reconciler.WithUsersFile(settings.UsersFile))
	}
	if settings.OutputDir != "" {
		opts = append(opts, reconciler.WithOutputDir(settings.OutputDir))
	}
	if flags.DryRun {
		opts = append(opts, reconciler.WithDryRun(true))
	}

	return opts, nil
}

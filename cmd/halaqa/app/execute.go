package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/halaqa/halaqa/internal/cmd/output"
	"github.com/halaqa/halaqa/pkg/logging"
)

// globalFlags holds the persistent root flags until setupCommand merges
// them into the configuration.
type globalFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	format     string
	logLevel   string
}

// Execute runs the halaqa CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "halaqa",
		Short:   "Hifz and murajaah attendance ingestion",
		Version: a.version,
		Long: `Halaqa turns the monthly attendance sheets of a Quran memorisation
circle into relational tables.

Sheets are exported to CSV under <source_dir>/<year>/<month>.csv. The
check command validates their headers; the convert command assigns stable
ids to students and teachers and records one daily entry per scored day.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	f := &a.flags
	rootCmd.PersistentFlags().StringVar(&f.configFile, "config", "", "config file (default is ./.halaqa.yaml or $HOME/.halaqa.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&f.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&f.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&f.format, "format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("halaqa {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if a.flags.configFile != "" {
		config, err := LoadConfig(a.flags.configFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	if _, err := output.ParseFormat(a.flags.format); err != nil {
		return err
	}

	a.config.UpdateFromFlags(a.flags.verbose, a.flags.quiet, a.flags.noColor, a.flags.format, a.flags.logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	a.logger.Debug().
		Str("command", cmd.Name()).
		Str("config", a.config.ConfigFile).
		Msg("Configuration loaded")

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// Package application provides the application interface for halaqa commands.
//
// Commands accept an Application instead of the concrete App so they can be
// tested against a Mock with an in-memory filesystem.
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            settings := app.Settings()
//	            engine, err := reconciler.New(app.Fs(), reconciler.WithSourceDir(settings.SourceDir))
//	            // ...
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Settings are the resolved engine and checker settings: config file and
// environment values, before command flags are applied.
type Settings struct {
	SourceDir  string
	Year       string
	Layout     string
	PersonFile string
	DailyFile  string
	UsersFile  string
	OutputDir  string
	DayColumns int
}

// Application provides what commands need from the application.
type Application interface {
	// Fs returns the filesystem sources are read from and tables written to.
	Fs() afero.Fs

	// Settings returns the configured paths and layout.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

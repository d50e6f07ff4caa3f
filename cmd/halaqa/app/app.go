// Package app provides the application context and dependency management
// for the halaqa CLI. It centralizes configuration, logging and the
// filesystem the commands work on.
package app

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/halaqa/halaqa/internal/cmd/application"
	"github.com/halaqa/halaqa/pkg/errors"
)

// App represents the halaqa application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config
	flags  globalFlags

	// Logger
	logger *zerolog.Logger

	// Filesystem sources are read from and tables written to
	fs afero.Fs
}

// New creates a new App instance with the given version information.
// Configuration is loaded from .env files, the environment and the config
// file; options can replace any dependency.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		fs:      afero.NewOsFs(),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.NewConfigError("app", "load config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Fs returns the application filesystem.
func (a *App) Fs() afero.Fs {
	return a.fs
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Settings returns the engine and checker settings from the configuration.
func (a *App) Settings() application.Settings {
	return application.Settings{
		SourceDir:  a.config.SourceDir,
		Year:       a.config.Year,
		Layout:     a.config.Layout,
		PersonFile: a.config.PersonFile,
		DailyFile:  a.config.DailyFile,
		UsersFile:  a.config.UsersFile,
		OutputDir:  a.config.OutputDir,
		DayColumns: a.config.DayColumns,
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFs sets the filesystem (an in-memory one in tests).
func WithFs(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

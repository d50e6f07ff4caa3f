package application

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding field.
// If a field is nil or zero, the method returns a default value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    FS:            afero.NewMemMapFs(),
//	    SettingsValue: application.Settings{SourceDir: "data/processed"},
//	}
//	cmd := convert.NewCommand(mock)
type Mock struct {
	FS               afero.Fs
	SettingsValue    Settings
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Fs returns the mock filesystem, creating an in-memory one when unset.
func (m *Mock) Fs() afero.Fs {
	if m.FS == nil {
		m.FS = afero.NewMemMapFs()
	}
	return m.FS
}

// Settings returns the mock settings.
func (m *Mock) Settings() Settings {
	return m.SettingsValue
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string {
	return "unknown"
}

// Date returns "unknown".
func (m *Mock) Date() string {
	return "unknown"
}

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string {
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)

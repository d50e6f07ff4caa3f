package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/halaqa/halaqa/pkg/constants"
)

// TestLoadConfig verifies defaults.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.SourceDir != constants.DefaultSourceDir {
		t.Errorf("SourceDir = %s, want %s", config.SourceDir, constants.DefaultSourceDir)
	}
	if config.Layout != "ledger" {
		t.Errorf("Layout = %s, want ledger", config.Layout)
	}
	if config.DayColumns != constants.DefaultDayColumns {
		t.Errorf("DayColumns = %d, want %d", config.DayColumns, constants.DefaultDayColumns)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies HALAQA_* variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("HALAQA_SOURCE_DIR", "/srv/sheets")
	t.Setenv("HALAQA_YEAR", "1447")
	t.Setenv("HALAQA_LAYOUT", "monthly")
	t.Setenv("HALAQA_DAY_COLUMNS", "29")
	t.Setenv("HALAQA_FORMAT", "json")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.SourceDir != "/srv/sheets" {
		t.Errorf("SourceDir = %s, want /srv/sheets", config.SourceDir)
	}
	if config.Year != "1447" {
		t.Errorf("Year = %s, want 1447", config.Year)
	}
	if config.Layout != "monthly" {
		t.Errorf("Layout = %s, want monthly", config.Layout)
	}
	if config.DayColumns != 29 {
		t.Errorf("DayColumns = %d, want 29", config.DayColumns)
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
}

// TestConfig_LoggingOptions verifies logging configuration.
func TestConfig_LoggingOptions(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", config.LogFormat)
	}
	if config.LogOutput != "stdout" {
		t.Errorf("LogOutput = %s, want stdout", config.LogOutput)
	}
}

// TestConfig_File verifies an explicit config file.
func TestConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halaqa.yaml")
	content := "source_dir: sheets\nlayout: monthly\nusers_file: db/Users.csv\noutput_dir: db\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", config.ConfigFile, path)
	}
	if config.SourceDir != "sheets" {
		t.Errorf("SourceDir = %s, want sheets", config.SourceDir)
	}
	if config.Layout != "monthly" {
		t.Errorf("Layout = %s, want monthly", config.Layout)
	}
	if config.UsersFile != "db/Users.csv" {
		t.Errorf("UsersFile = %s, want db/Users.csv", config.UsersFile)
	}
	if config.PersonFile != constants.DefaultPersonFile {
		t.Errorf("PersonFile = %s, want default %s", config.PersonFile, constants.DefaultPersonFile)
	}
}

// TestConfig_MissingFile verifies an explicit but missing config file fails.
func TestConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

// TestConfig_UpdateFromFlags verifies flag precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "table", LogLevel: "error"}

	config.UpdateFromFlags(true, false, false, "", "")
	if !config.Verbose {
		t.Error("Verbose not set")
	}
	if config.Format != "table" {
		t.Errorf("Format = %s, want table", config.Format)
	}
	if config.LogLevel != "" {
		t.Errorf("-v should override the environment level, got %q", config.LogLevel)
	}

	config.UpdateFromFlags(false, false, false, "yaml", "trace")
	if config.Format != "yaml" {
		t.Errorf("Format = %s, want yaml", config.Format)
	}
	if config.LogLevel != "trace" {
		t.Errorf("LogLevel = %s, want trace", config.LogLevel)
	}
}

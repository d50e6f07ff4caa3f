package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/halaqa/halaqa/pkg/constants"
	"github.com/halaqa/halaqa/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Sources and tables
	SourceDir  string
	Year       string
	Layout     string
	PersonFile string
	DailyFile  string
	UsersFile  string
	OutputDir  string
	DayColumns int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (HALAQA_*; LOG_* for logging)
// 3. .env files
// 4. Config file (configFile, or .halaqa.yaml in the working or home directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first so their values are visible to viper
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range map[string]string{
		"log_level":  "LOG_LEVEL",
		"log_format": "LOG_FORMAT",
		"log_output": "LOG_OUTPUT",
	} {
		if err := v.BindEnv(key, constants.EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, errors.NewConfigError("env", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("file", configFile, err)
		}
	} else {
		v.SetConfigName(constants.DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("file", filepath.Join(".", constants.DefaultConfigName+".yaml"), err)
			}
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		SourceDir:  v.GetString("source_dir"),
		Year:       v.GetString("year"),
		Layout:     v.GetString("layout"),
		PersonFile: v.GetString("person_file"),
		DailyFile:  v.GetString("daily_file"),
		UsersFile:  v.GetString("users_file"),
		OutputDir:  v.GetString("output_dir"),
		DayColumns: v.GetInt("day_columns"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source_dir", constants.DefaultSourceDir)
	v.SetDefault("layout", "ledger")
	v.SetDefault("person_file", constants.DefaultPersonFile)
	v.SetDefault("daily_file", constants.DefaultDailyFile)
	v.SetDefault("users_file", constants.DefaultUsersFile)
	v.SetDefault("output_dir", constants.DefaultOutputDir)
	v.SetDefault("day_columns", constants.DefaultDayColumns)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// Flags only override when set. -v and -q outrank a level taken from the
// environment, so they clear it unless --log-level is also given.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	switch {
	case logLevel != "":
		c.LogLevel = logLevel
	case verbose || quiet:
		c.LogLevel = ""
	}
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are never overwritten.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

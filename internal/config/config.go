package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/narumiruna/powerflow/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval     = 1.0
	DefaultHistoryLimit = 20
	DefaultExportLimit  = 1000
	DefaultStatsLimit   = 100
	DefaultLogLevel     = "info"

	configName = "powerflow"
	configType = "toml"
	configDir  = ".powerflow"
)

// Config holds all runtime settings for powerflow.
type Config struct {
	Interval     float64 `mapstructure:"interval"`
	Database     string  `mapstructure:"database"`
	HistoryLimit int     `mapstructure:"history_limit"`
	ExportLimit  int     `mapstructure:"export_limit"`
	StatsLimit   int     `mapstructure:"stats_limit"`
	LogLevel     string  `mapstructure:"log_level"`
	Debug        bool    `mapstructure:"debug"`
	Verbose      bool    `mapstructure:"verbose"`
}

// DefaultDatabasePath returns the default SQLite database location
// (~/.powerflow/powerflow.db).
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), configDir, "powerflow.db")
	}
	return filepath.Join(home, configDir, "powerflow.db")
}

// Load reads configuration from defaults, an optional TOML file and the
// given command line arguments, in that order of precedence. The config
// file is located via the POWERFLOW_CONFIG environment variable, falling
// back to ~/.powerflow/powerflow.toml.
func Load(arguments []string) (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("database", DefaultDatabasePath())
	v.SetDefault("history_limit", DefaultHistoryLimit)
	v.SetDefault("export_limit", DefaultExportLimit)
	v.SetDefault("stats_limit", DefaultStatsLimit)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	fs := pflag.NewFlagSet("powerflow", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Float64("interval", DefaultInterval, "Seconds between power readings")
	fs.String("database", "", "Path to the SQLite database")
	fs.String("log-level", "", "Log level (debug, info, warning, error)")
	fs.Bool("debug", false, "Enable debug logging")
	fs.Bool("verbose", false, "Enable verbose logging")

	if err := fs.Parse(arguments); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Command line flags override file values
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "interval":
			val, _ := fs.GetFloat64(f.Name)
			v.Set("interval", val)
		case "debug", "verbose":
			val, _ := fs.GetBool(f.Name)
			v.Set(f.Name, val)
		default:
			key := strings.ReplaceAll(f.Name, "-", "_")
			v.Set(key, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper) error {
	errFactory := errors.New()

	if path := os.Getenv("POWERFLOW_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDir))
		}
		v.AddConfigPath("/etc/powerflow")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return errFactory.WithMessage(errors.ErrReadConfig,
			"Failed to read config file: "+err.Error())
	}

	return nil
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Database == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "database path must not be empty")
	}
	if c.HistoryLimit <= 0 || c.ExportLimit <= 0 || c.StatsLimit <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "limits must be positive")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warning", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

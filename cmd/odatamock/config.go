package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ODATAMOCK"

// Config holds the settings of one generate run.
type Config struct {
	Metadata  string `mapstructure:"metadata"`
	Options   string `mapstructure:"options"`
	Count     int    `mapstructure:"count"`
	RootURI   string `mapstructure:"root-uri"`
	Out       string `mapstructure:"out"`
	DBDialect string `mapstructure:"db-dialect"`
	DBDSN     string `mapstructure:"db-dsn"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

// loadConfig merges flags, ODATAMOCK_* environment variables and an optional config file,
// in that order of precedence. Without an explicit file, odatamock.yaml in the working
// directory is used if it exists.
func loadConfig(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("odatamock")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Metadata == "" {
		return fmt.Errorf("metadata file is required (--metadata or %s_METADATA)", envPrefix)
	}
	if cfg.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", cfg.Count)
	}
	if cfg.DBDialect != "" && cfg.DBDSN == "" {
		return fmt.Errorf("--db-dsn is required when --db-dialect is set")
	}
	if cfg.DBDialect == "" && cfg.DBDSN != "" {
		return fmt.Errorf("--db-dialect is required when --db-dsn is set")
	}
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", format)
}

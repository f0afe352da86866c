// Package config provides configuration loading for handyctl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config directory and the environment prefix.
const AppName = "handyctl"

// Config holds all configuration for the application.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig holds the REST API endpoint configuration.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig holds token persistence configuration.
type SessionConfig struct {
	// TokenFile is where the bearer token survives between runs. Empty
	// disables persistence.
	TokenFile string `mapstructure:"token_file"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// OutputConfig holds command output configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"` // table, json, yaml
}

// MetricsConfig holds client metrics configuration.
type MetricsConfig struct {
	// Textfile, when set, receives the API client metrics in the Prometheus
	// text format after every command.
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from files and environment variables. The
// returned viper instance lets callers bind command line flags on top.
func Load() (*Config, *viper.Viper, error) {
	v := New()
	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// New returns a viper instance with defaults, search paths and environment
// overrides configured, and the config file read if one exists.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(newKeyReplacer())
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// Decode reads the optional config file into v and unmarshals the result.
func Decode(v *viper.Viper) (*Config, error) {
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	switch strings.ToLower(c.Output.Format) {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output.format %q", c.Output.Format)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	return nil
}

func newKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.url", "http://localhost:8000/api/v1")
	v.SetDefault("api.timeout", "30s")

	// Session defaults
	tokenFile := ""
	if dir, err := Dir(); err == nil {
		tokenFile = filepath.Join(dir, "session.json")
	}
	v.SetDefault("session.token_file", tokenFile)

	// Log defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	// Output defaults
	v.SetDefault("output.format", "table")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
}

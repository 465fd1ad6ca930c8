package platform

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aretw0/wiki/pkg/state"
)

// ConfigFilename is the optional per-vault configuration file.
const ConfigFilename = "wiki.toml"

// Config is the content of wiki.toml. Zero values mean "not set".
type Config struct {
	Adapter    string `toml:"adapter"`
	Format     string `toml:"format"`
	Versioning *bool  `toml:"versioning"`
	SystemDir  string `toml:"system_dir"`
	Database   string `toml:"database"`
	LogLevel   string `toml:"log_level"`
}

// LoadConfig reads config from the given path, expanding environment variables.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that set fields hold known values.
func (c *Config) Validate() error {
	switch c.Adapter {
	case "", "fs", "sqlite", "memory":
	default:
		return fmt.Errorf("adapter must be one of fs, sqlite, memory (got %q)", c.Adapter)
	}

	if c.Format != "" {
		if _, ok := state.CodecFor(c.Format); !ok {
			return fmt.Errorf("format must be json or yaml (got %q)", c.Format)
		}
	}

	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return fmt.Errorf("log_level is invalid: %w", err)
		}
	}

	return nil
}

// Level returns the configured log level, defaulting to Info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if c.LogLevel != "" {
		_ = level.UnmarshalText([]byte(c.LogLevel))
	}
	return level
}

// Options translates the set fields into functional options.
// Options passed after these override them.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Format != "" {
		opts = append(opts, WithFormat(c.Format))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.SystemDir != "" {
		opts = append(opts, WithSystemDir(c.SystemDir))
	}
	if c.Database != "" {
		opts = append(opts, WithDatabase(c.Database))
	}
	return opts
}

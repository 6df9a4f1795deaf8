package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBuildDirectory  = "${workspaceFolder}/build"
	DefaultCompileCommands = "${buildDirectory}/compile_commands.json"
	DefaultDialect         = "auto"
	DefaultLogLevel        = "info"
)

// Config captures the workspace settings read from cmkit.yaml or cmkit.toml.
// String fields documented as templates go through variable expansion before use.
type Config struct {
	Version int `yaml:"version" toml:"version"`
	// BuildDirectory is a template for the CMake binary directory.
	BuildDirectory string `yaml:"build_directory" toml:"build_directory"`
	// CompileCommands is a template for the compilation database path.
	CompileCommands string `yaml:"compile_commands" toml:"compile_commands"`
	// BuildType and Kit feed the ${buildType} and ${buildKit} variables.
	BuildType string `yaml:"build_type,omitempty" toml:"build_type"`
	Kit       string `yaml:"kit,omitempty" toml:"kit"`
	Generator string `yaml:"generator,omitempty" toml:"generator"`
	// Environment overrides the process environment for ${env:...}.
	// Values are templates.
	Environment map[string]string `yaml:"environment,omitempty" toml:"environment"`
	// Contexts declares extra namespaces: contexts.kit.name is ${kit:name}.
	Contexts    map[string]map[string]string `yaml:"contexts,omitempty" toml:"contexts"`
	Diagnostics DiagnosticsConfig            `yaml:"diagnostics" toml:"diagnostics"`
	Log         LogConfig                    `yaml:"log" toml:"log"`
}

// DiagnosticsConfig selects how console output is parsed.
type DiagnosticsConfig struct {
	Dialect string `yaml:"dialect" toml:"dialect"`
}

// LogConfig controls the workspace log file.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:         1,
		BuildDirectory:  DefaultBuildDirectory,
		CompileCommands: DefaultCompileCommands,
		Diagnostics: DiagnosticsConfig{
			Dialect: DefaultDialect,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads the configuration from disk if it exists, otherwise returns the
// default configuration. Files ending in .toml are decoded as TOML, anything
// else as YAML.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(contents), &cfg); err != nil {
			return Config{}, fmt.Errorf("decode toml config: %w", err)
		}
	} else if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the file left empty.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.BuildDirectory) == "" {
		c.BuildDirectory = defaults.BuildDirectory
	}
	if strings.TrimSpace(c.CompileCommands) == "" {
		c.CompileCommands = defaults.CompileCommands
	}
	if strings.TrimSpace(c.Diagnostics.Dialect) == "" {
		c.Diagnostics.Dialect = defaults.Diagnostics.Dialect
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// EncodeTOML returns the TOML encoding of the configuration.
func (c Config) EncodeTOML() ([]byte, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return nil, fmt.Errorf("marshal toml config: %w", err)
	}
	return []byte(b.String()), nil
}

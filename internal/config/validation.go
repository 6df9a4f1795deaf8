package config

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

var (
	logLevels          = []string{"trace", "debug", "info", "warn", "error"}
	builtinNamespaces  = []string{"env", "cmake"}
	namespaceValidator = func(s string) bool {
		if s == "" {
			return false
		}
		for i, r := range s {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			case i > 0 && (r >= '0' && r <= '9' || r == '.' || r == '-'):
			default:
				return false
			}
		}
		return true
	}
)

// Validate checks the configuration and returns structured findings.
// knownDialects lists the accepted diagnostics.dialect values besides "auto".
func (c Config) Validate(knownDialects []string) []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateDialect(knownDialects)...)
	results = append(results, c.validateLogLevel()...)
	results = append(results, c.validateContexts()...)
	results = append(results, c.validateEnvironment()...)
	if c.Version > 1 {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("config version %d is newer than supported version 1", c.Version),
		})
	}
	return results
}

// HasErrors reports whether any result is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func (c Config) validateDialect(known []string) []ValidationResult {
	dialect := strings.ToLower(strings.TrimSpace(c.Diagnostics.Dialect))
	if dialect == "" || dialect == DefaultDialect || contains(known, dialect) {
		return nil
	}
	return []ValidationResult{{
		Level:   "error",
		Message: fmt.Sprintf("diagnostics.dialect %q is not one of auto, %s", c.Diagnostics.Dialect, strings.Join(known, ", ")),
	}}
}

func (c Config) validateLogLevel() []ValidationResult {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	if level == "" || contains(logLevels, level) {
		return nil
	}
	return []ValidationResult{{
		Level:   "error",
		Message: fmt.Sprintf("log.level %q is not one of %s", c.Log.Level, strings.Join(logLevels, ", ")),
	}}
}

func (c Config) validateContexts() []ValidationResult {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []ValidationResult
	for _, name := range names {
		switch {
		case !namespaceValidator(name):
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("context namespace %q is not a valid identifier", name),
			})
		case contains(builtinNamespaces, name):
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("context namespace %q shadows the built-in namespace", name),
			})
		}
	}
	return results
}

func (c Config) validateEnvironment() []ValidationResult {
	var results []ValidationResult
	for key := range c.Environment {
		if strings.TrimSpace(key) == "" || strings.Contains(key, "=") {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("environment variable name %q is invalid", key),
			})
		}
	}
	return results
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

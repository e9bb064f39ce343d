package config

import (
	"fmt"
	"strings"
)

// Error categories
const (
	CategoryInvalid = "invalid"
	CategoryLoad    = "load"
)

// ConfigError represents a configuration error with actionable guidance.
// All error messages are lowercase following Go conventions.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string // error category: "invalid", "load"
	Field    string // config field path (e.g., "retry.maxattempts")
	Message  string // user-friendly error message (lowercase)
	Action   string // actionable instruction (lowercase)
	Err      error  // underlying cause, if any
}

// Error implements the error interface with lowercase formatting.
func (e *ConfigError) Error() string {
	var parts []string

	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("(%v)", e.Err))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewInvalidFieldError creates an error for an invalid configuration value.
// The action names the environment variable that overrides the field.
func NewInvalidFieldError(field, message string) *ConfigError {
	return &ConfigError{
		Category: CategoryInvalid,
		Field:    field,
		Message:  message,
		Action:   fmt.Sprintf("fix %s in the config file or set %s", field, EnvVar(DefaultEnvPrefix, field)),
	}
}

// NewLoadError creates an error for a source that could not be read.
func NewLoadError(source string, err error) *ConfigError {
	return &ConfigError{
		Category: CategoryLoad,
		Field:    source,
		Message:  "could not be loaded",
		Err:      err,
	}
}

// EnvVar returns the environment variable that sets a dotted config key.
func EnvVar(prefix, key string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-session/retry"
)

func noEnv() []string { return nil }

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithFile(writeFile(t, "")), WithEnviron(noEnv))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.False(t, cfg.Session.IsolateAnonymous)
	assert.Equal(t, "X-Request-ID", cfg.Session.RequestIDHeader)
	assert.Equal(t, retry.DefaultPolicy(), cfg.RetryPolicy())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
retry:
  maxattempts: 3
  initialdelay: 50ms
session:
  isolateanonymous: true
`)

	cfg, err := Load(WithFile(path), WithEnviron(noEnv))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.True(t, cfg.Session.IsolateAnonymous)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "retry:\n  maxattempts: 3\n")

	cfg, err := Load(WithFile(path), WithEnviron(environ(
		"SESSION_RETRY_MAXATTEMPTS=7",
		"SESSION_RETRY_MULTIPLIER=1.5",
		"SESSION_SESSION_REQUESTIDHEADER=X-Correlation-ID",
		"OTHER_RETRY_MAXATTEMPTS=9",
	)))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1.5, cfg.Retry.Multiplier)
	assert.Equal(t, "X-Correlation-ID", cfg.Session.RequestIDHeader)
}

func TestLoadCustomEnvPrefix(t *testing.T) {
	cfg, err := Load(WithFile(writeFile(t, "")), WithEnvPrefix("MUSIC_"), WithEnviron(environ(
		"MUSIC_LOG_LEVEL=warn",
		"SESSION_LOG_LEVEL=error",
	)))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadUsesFileFromEnvironment(t *testing.T) {
	path := writeFile(t, "log:\n  pretty: true\n")

	cfg, err := Load(WithEnviron(environ(FileEnvVar + "=" + path)))
	require.NoError(t, err)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadMissingNamedFileFails(t *testing.T) {
	_, err := Load(WithFile(filepath.Join(t.TempDir(), "absent.yaml")), WithEnviron(noEnv))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CategoryLoad, cfgErr.Category)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithoutDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(WithEnviron(noEnv))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
}

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("retry:\n  multiplier: 3\nlog:\n  level: error\n"))
	require.NoError(t, err)

	assert.Equal(t, 3.0, cfg.Retry.Multiplier)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
}

func TestLoadFromBytesRejectsMalformedYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("retry: [unclosed"))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CategoryLoad, cfgErr.Category)
}

func TestValidationReportsField(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{name: "zero_attempts", yaml: "retry:\n  maxattempts: 0\n", field: "retry.maxattempts"},
		{name: "shrinking_multiplier", yaml: "retry:\n  multiplier: 0.5\n", field: "retry.multiplier"},
		{name: "negative_delay", yaml: "retry:\n  initialdelay: -1s\n", field: "retry"},
		{name: "unknown_level", yaml: "log:\n  level: loud\n", field: "log.level"},
		{name: "empty_header", yaml: "session:\n  requestidheader: \"\"\n", field: "session.requestidheader"},
		{name: "header_with_space", yaml: "session:\n  requestidheader: \"X Request\"\n", field: "session.requestidheader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, CategoryInvalid, cfgErr.Category)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNegativeDelayWrapsPolicyError(t *testing.T) {
	_, err := LoadFromBytes([]byte("retry:\n  initialdelay: -1s\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config_invalid: retry")
}

func TestConfigErrorFormatting(t *testing.T) {
	err := NewInvalidFieldError("retry.maxattempts", "must be at least 1 (got 0)")
	assert.Equal(t,
		"config_invalid: retry.maxattempts must be at least 1 (got 0) fix retry.maxattempts in the config file or set SESSION_RETRY_MAXATTEMPTS",
		err.Error())
	assert.NoError(t, err.Unwrap())

	cause := errors.New("permission denied")
	loadErr := NewLoadError("config.yaml", cause)
	assert.ErrorIs(t, loadErr, cause)
	assert.Equal(t, "config_load: config.yaml could not be loaded (permission denied)", loadErr.Error())
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "SESSION_SESSION_ISOLATEANONYMOUS", EnvVar(DefaultEnvPrefix, "session.isolateanonymous"))
}

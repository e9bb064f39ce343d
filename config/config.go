// Package config loads client configuration from defaults, an optional YAML file and
// the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultEnvPrefix prefixes every environment override
	DefaultEnvPrefix = "SESSION_"
	// DefaultFile is read when present and no other file is named
	DefaultFile = "config.yaml"
	// FileEnvVar names the environment variable that selects the config file
	FileEnvVar = "SESSION_CONFIG_FILE"
)

type loadOptions struct {
	file      string
	fileSet   bool
	envPrefix string
	environ   func() []string
}

// LoadOption configures Load
type LoadOption func(*loadOptions)

// WithFile reads path instead of SESSION_CONFIG_FILE or config.yaml. A named file must exist.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.file = path
		o.fileSet = true
	}
}

// WithEnvPrefix replaces the SESSION_ prefix of environment overrides
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) { o.envPrefix = prefix }
}

// WithEnviron replaces os.Environ as the source of environment overrides
func WithEnviron(environ func() []string) LoadOption {
	return func(o *loadOptions) { o.environ = environ }
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file
// 3. Default values (lowest priority)
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{envPrefix: DefaultEnvPrefix, environ: os.Environ}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, required := o.file, o.fileSet
	if !required {
		if named := lookupEnv(o.environ, FileEnvVar); named != "" {
			path, required = named, true
		} else {
			path = DefaultFile
		}
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// config.yaml is optional; an explicitly named file is not
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, NewLoadError(path, err)
		}
	}

	if err := loadEnv(k, o.envPrefix, o.environ); err != nil {
		return nil, NewLoadError("environment", err)
	}

	return finish(k)
}

// LoadFromBytes loads defaults overlaid with YAML content; the environment is not consulted.
func LoadFromBytes(content []byte) (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, NewLoadError("yaml", err)
	}
	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, NewLoadError("unmarshal", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"log.level":  "info",
		"log.pretty": false,

		"retry.maxattempts":  5,
		"retry.initialdelay": "2s",
		"retry.multiplier":   2.0,

		"session.isolateanonymous": false,
		"session.requestidheader":  "X-Request-ID",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

func loadEnv(k *koanf.Koanf, prefix string, environ func() []string) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix:      prefix,
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, any) {
			// SESSION_RETRY_MAXATTEMPTS -> retry.maxattempts
			key = strings.TrimPrefix(key, prefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil)
}

func lookupEnv(environ func() []string, name string) string {
	for _, kv := range environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k == name {
			return v
		}
	}
	return ""
}

package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the client configuration: logging, retry policy and session behavior.
// The koanf instance is kept for keys the struct does not declare.
type Config struct {
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log"`
	Retry   RetryConfig   `koanf:"retry" json:"retry" yaml:"retry"`
	Session SessionConfig `koanf:"session" json:"session" yaml:"session"`

	// k holds the underlying Koanf instance for flexible access to custom configurations
	k *koanf.Koanf `json:"-" yaml:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// RetryConfig holds the policy used for retried session calls.
type RetryConfig struct {
	MaxAttempts  int           `koanf:"maxattempts" json:"maxattempts" yaml:"maxattempts" validate:"min=1"`
	InitialDelay time.Duration `koanf:"initialdelay" json:"initialdelay" yaml:"initialdelay"`
	Multiplier   float64       `koanf:"multiplier" json:"multiplier" yaml:"multiplier" validate:"gte=1"`
}

// SessionConfig holds session behavior toggles.
type SessionConfig struct {
	// IsolateAnonymous sends unauthenticated calls over a one-off transport.
	IsolateAnonymous bool `koanf:"isolateanonymous" json:"isolateanonymous" yaml:"isolateanonymous"`
	// RequestIDHeader names the header that carries the request ID.
	RequestIDHeader string `koanf:"requestidheader" json:"requestidheader" yaml:"requestidheader" validate:"required,excludesall= "`
}

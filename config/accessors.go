package config

import (
	"time"

	"github.com/gaborage/go-session/logger"
	"github.com/gaborage/go-session/retry"
	"github.com/gaborage/go-session/session"
)

// GetString retrieves a string value from the configuration or the provided default.
func (c *Config) GetString(key string, defaultVal ...string) string {
	if !c.exists(key) {
		return optionalDefault("", defaultVal...)
	}
	return c.k.String(key)
}

// GetInt retrieves an int value from the configuration or the provided default.
func (c *Config) GetInt(key string, defaultVal ...int) int {
	if !c.exists(key) {
		return optionalDefault(0, defaultVal...)
	}
	return c.k.Int(key)
}

// GetBool retrieves a bool value from the configuration or the provided default.
func (c *Config) GetBool(key string, defaultVal ...bool) bool {
	if !c.exists(key) {
		return optionalDefault(false, defaultVal...)
	}
	return c.k.Bool(key)
}

// GetDuration retrieves a duration value from the configuration or the provided default.
// String values are parsed with time.ParseDuration.
func (c *Config) GetDuration(key string, defaultVal ...time.Duration) time.Duration {
	if !c.exists(key) {
		return optionalDefault(time.Duration(0), defaultVal...)
	}
	return c.k.Duration(key)
}

func (c *Config) exists(key string) bool {
	return c != nil && c.k != nil && c.k.Exists(key)
}

func optionalDefault[T any](zero T, defaultVal ...T) T {
	if len(defaultVal) > 0 {
		return defaultVal[0]
	}
	return zero
}

// NewLogger builds the logger described by the log section
func (c *Config) NewLogger() *logger.ZeroLogger {
	return logger.New(c.Log.Level, c.Log.Pretty)
}

// NewRetrier builds a Retrier for the retry section
func (c *Config) NewRetrier(opts ...retry.Option) (*retry.Retrier, error) {
	return retry.New(c.RetryPolicy(), opts...)
}

// SessionOptions returns the session options described by the session section.
// A nil log leaves the session logger unset.
func (c *Config) SessionOptions(log logger.Logger) []session.Option {
	opts := []session.Option{
		session.WithIsolatedAnonymousRequests(c.Session.IsolateAnonymous),
		session.WithRequestIDHeader(c.Session.RequestIDHeader),
	}
	if log != nil {
		opts = append(opts, session.WithLogger(log))
	}
	return opts
}

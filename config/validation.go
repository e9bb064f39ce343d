package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gaborage/go-session/retry"
)

var configValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their koanf key
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks cfg and returns a *ConfigError naming the first invalid field.
func Validate(cfg *Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return NewInvalidFieldError(fieldPath(fe), fieldMessage(fe))
		}
		return err
	}

	if err := cfg.RetryPolicy().Validate(); err != nil {
		return NewInvalidFieldError("retry", err.Error())
	}
	return nil
}

// fieldPath strips the root struct name: "Config.retry.maxattempts" -> "retry.maxattempts"
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s (got %v)", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %v)", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "excludesall":
		return "must not contain spaces"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// RetryPolicy converts the retry section to a retry.Policy
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  c.Retry.MaxAttempts,
		InitialDelay: c.Retry.InitialDelay,
		Multiplier:   c.Retry.Multiplier,
	}
}

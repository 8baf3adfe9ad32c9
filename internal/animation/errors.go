package animation

import (
	"errors"
	"fmt"
)

// Configuration errors. They are returned while building configuration
// values, never from per-frame evaluation.
var (
	ErrInvalidSpringConfig        = errors.New("invalid spring config")
	ErrInvalidInterpolationRange  = errors.New("invalid interpolation range")
	ErrInvalidSequenceWindow      = errors.New("invalid sequence window")
	ErrInvalidTransitionDirection = errors.New("invalid transition direction")
)

// ConfigError describes which field of a configuration value was rejected.
// Kind is one of the sentinel errors above, so errors.Is(err, ErrInvalidSpringConfig)
// works through wrapping.
type ConfigError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}

// NewConfigError builds a ConfigError with a formatted message.
func NewConfigError(kind error, field, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

package filter

import (
	"errors"
	"fmt"
)

// ErrConfiguration signals a caller-supplied condition that cannot be evaluated.
var ErrConfiguration = errors.New("invalid filter configuration")

// Refinements of ErrConfiguration. errors.Is matches both the refinement and ErrConfiguration.
var (
	ErrMalformedCondition = fmt.Errorf("%w: malformed condition", ErrConfiguration)
	ErrUnknownOperator    = fmt.Errorf("%w: unknown operator", ErrConfiguration)
	ErrUnknownField       = fmt.Errorf("%w: unknown field", ErrConfiguration)
)

// ConfigError names the condition (and field, when known) that failed validation.
type ConfigError struct {
	Condition string
	Field     string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("condition %q: %s %q", e.Condition, e.Err.Error(), e.Field)
	}
	return fmt.Sprintf("condition %q: %s", e.Condition, e.Err.Error())
}

func (e *ConfigError) Unwrap() error { return e.Err }

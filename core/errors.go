package core

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every package of the engine. Errors returned across
// component boundaries wrap one of these so callers can classify them with errors.Is.
var (
	// ErrConstruction marks invalid auction or strategy parameters at build time.
	ErrConstruction = errors.New("invalid construction parameters")

	// ErrInvalidArgument marks a negative cash, quantity or bid passed across a component boundary.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInternalStrategy marks a strategy that broke its contract (bid above available cash).
	ErrInternalStrategy = errors.New("internal strategy fault")

	// ErrValidation marks a violated round or final auction invariant.
	ErrValidation = errors.New("auction validation failed")
)

// RuleViolation names the auction rule that failed. It unwraps to ErrValidation.
type RuleViolation struct {
	Rule    string
	Message string
}

func (v *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

func (v *RuleViolation) Unwrap() error {
	return ErrValidation
}

// invalidArgument builds an ErrInvalidArgument with a formatted reason.
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

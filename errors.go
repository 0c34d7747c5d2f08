package spot

import (
	"errors"
	"fmt"
)

// Sentinel errors for the spot package's closed set of failure kinds.
var (
	// ErrInvalidConfig is returned by New when a SpotConfig constraint is
	// violated. Use errors.As to retrieve the underlying *ConfigError.
	ErrInvalidConfig = errors.New("spot: invalid config")

	// ErrInsufficientData is returned by Fit when fewer training samples
	// are supplied than required (max(5, 1/(1-Level))).
	ErrInsufficientData = errors.New("spot: insufficient training data")

	// ErrInsufficientTail is returned by Fit when fewer than 5 training
	// excesses remain after applying the excess threshold.
	ErrInsufficientTail = errors.New("spot: insufficient tail excesses")

	// ErrNumericalFailure is returned by Fit when the GPD fitter produces
	// a non-finite likelihood and the method-of-moments fallback also
	// yields a non-positive sigma.
	ErrNumericalFailure = errors.New("spot: numerical failure fitting GPD tail")

	// ErrNotFitted is returned by Step when called before Fit.
	ErrNotFitted = errors.New("spot: detector has not been fitted")
)

// ConfigError describes which SpotConfig field failed validation and why.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("spot: config field %s=%v invalid: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

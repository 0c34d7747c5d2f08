package spot

import (
	"errors"
	"testing"
)

func TestConfigErrorMessageIncludesFieldAndReason(t *testing.T) {
	err := &ConfigError{Field: "Q", Value: 0.5, Reason: "must satisfy 0 < Q < 1-Level"}
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigError should unwrap to ErrInvalidConfig")
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidConfig,
		ErrInsufficientData,
		ErrInsufficientTail,
		ErrNumericalFailure,
		ErrNotFitted,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %d unexpectedly matches sentinel %d", i, j)
			}
		}
	}
}

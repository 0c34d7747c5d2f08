package spot

// SpotConfig configures a Spot detector.
type SpotConfig struct {
	// Q is the anomaly probability: smaller values are more conservative.
	// Must satisfy 0 < Q < 1-Level. Default: 1e-4.
	Q float64

	// LowTail, if true, detects extremes in the lower tail instead of the
	// upper tail by mirroring every observation around zero internally.
	// Default: false.
	LowTail bool

	// DiscardAnomalies, if true, excludes values classified as Anomaly
	// from being folded into the peaks buffer and tail refit. Default:
	// true.
	DiscardAnomalies bool

	// Level is the tail-entry quantile: the excess threshold t is set to
	// this quantile of the training sample. Must satisfy 0 < Level < 1.
	// Default: 0.998.
	Level float64

	// MaxExcess is the capacity of the peaks ring buffer. Must be >= 5.
	// Default: 200.
	MaxExcess int
}

// DefaultConfig returns the default SpotConfig: Q=1e-4, LowTail=false,
// DiscardAnomalies=true, Level=0.998, MaxExcess=200.
func DefaultConfig() SpotConfig {
	return SpotConfig{
		Q:                1e-4,
		LowTail:          false,
		DiscardAnomalies: true,
		Level:            0.998,
		MaxExcess:        200,
	}
}

// Validate checks the configuration constraints from the SPOT spec,
// returning a *ConfigError describing the first violation found.
func (c SpotConfig) Validate() error {
	if !(c.Level > 0 && c.Level < 1) {
		return &ConfigError{Field: "Level", Value: c.Level, Reason: "must satisfy 0 < Level < 1"}
	}
	if !(c.Q > 0 && c.Q < 1-c.Level) {
		return &ConfigError{Field: "Q", Value: c.Q, Reason: "must satisfy 0 < Q < 1-Level"}
	}
	if c.MaxExcess < 5 {
		return &ConfigError{Field: "MaxExcess", Value: float64(c.MaxExcess), Reason: "must be >= 5"}
	}
	return nil
}

package spot

import (
	"log/slog"
	"math"
)

// Spot is a streaming peaks-over-threshold anomaly detector for a
// univariate real-valued time series. Construct one with New, train it
// with Fit, then classify each subsequent observation with Step.
//
// A Spot value is not safe for concurrent use; callers must provide their
// own mutual exclusion if a detector is shared across goroutines.
type Spot struct {
	config SpotConfig
	upDown float64 // +1 for upper tail, -1 for lower tail (mirrors at entry)

	n  int // observations seen by Step
	nt int // tail events observed (Excess or Anomaly)

	t float64 // excess threshold, internal (mirrored) scale
	z float64 // anomaly threshold, internal (mirrored) scale

	p2      *P2
	tail    *Tail
	fitted  bool

	logger *slog.Logger
}

// New constructs a Spot detector from config. It validates config and
// returns *ConfigError (wrapping ErrInvalidConfig) if any constraint is
// violated. logger may be nil, in which case diagnostic logging is
// discarded.
func New(config SpotConfig, logger *slog.Logger) (*Spot, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	upDown := 1.0
	if config.LowTail {
		upDown = -1.0
	}
	if logger == nil {
		logger = discardLogger
	}
	return &Spot{
		config: config,
		upDown: upDown,
		t:      math.NaN(),
		z:      math.NaN(),
		p2:     NewP2(config.Level),
		tail:   NewTail(config.MaxExcess),
		logger: logger,
	}, nil
}

// Fit trains the detector on an initialization sample. It requires at
// least max(5, 1/(1-Level)) samples, and at least 5 of them must exceed
// the fitted excess threshold. Fit does not affect N or NumExcesses.
func (s *Spot) Fit(samples []float64) error {
	minSamples := 5
	if alt := int(math.Ceil(1 / (1 - s.config.Level))); alt > minSamples {
		minSamples = alt
	}
	if len(samples) < minSamples {
		return ErrInsufficientData
	}

	for _, x := range samples {
		s.p2.Observe(s.upDown * x)
	}
	t := s.p2.Quantile()

	tail := NewTail(s.config.MaxExcess)
	for _, x := range samples {
		y := s.upDown*x - t
		if y > 0 {
			tail.Push(y)
		}
	}
	if tail.Peaks().Count() < 5 {
		return ErrInsufficientTail
	}
	if !tail.Fit(s.logger) {
		return ErrNumericalFailure
	}

	z := t + tail.Quantile(s.config.Q/(1-s.config.Level))
	if math.IsNaN(z) {
		return ErrNumericalFailure
	}

	s.t = t
	s.z = z
	s.tail = tail
	s.fitted = true
	return nil
}

// Step classifies a single observation and folds it into the tail model
// when it is an excess. It returns ErrNotFitted if called before Fit.
// Once fitted, Step never fails: numerical pathologies during refit leave
// (gamma, sigma) and the anomaly threshold at their last valid values.
func (s *Spot) Step(x float64) (Status, error) {
	if !s.fitted {
		return Normal, ErrNotFitted
	}

	s.n++
	v := s.upDown * x

	if v <= s.t {
		return Normal, nil
	}

	y := v - s.t
	if v > s.z {
		s.nt++
		if !s.config.DiscardAnomalies {
			s.refit(y)
		}
		return Anomaly, nil
	}

	s.nt++
	s.refit(y)
	return Excess, nil
}

// refit pushes a new excess magnitude into the tail, refits (gamma, sigma),
// and recomputes the anomaly threshold. If the refit fails numerically, the
// previous tail parameters and threshold are left untouched.
func (s *Spot) refit(y float64) {
	s.tail.Push(y)
	if !s.tail.Fit(s.logger) {
		return
	}
	z := s.t + s.tail.Quantile(s.config.Q/(1-s.config.Level))
	if math.IsNaN(z) {
		return
	}
	s.z = z
}

// N returns the total number of observations processed by Step.
func (s *Spot) N() int { return s.n }

// NumExcesses returns the total number of tail events (Excess or Anomaly)
// observed by Step, including anomalies discarded from the peaks buffer.
func (s *Spot) NumExcesses() int { return s.nt }

// ExcessThreshold returns t, the boundary between Normal and tail values,
// on the original (unmirrored) scale.
func (s *Spot) ExcessThreshold() float64 { return s.upDown * s.t }

// AnomalyThreshold returns z, the boundary between Excess and Anomaly, on
// the original (unmirrored) scale.
func (s *Spot) AnomalyThreshold() float64 { return s.upDown * s.z }

// TailParameters returns the current fitted (gamma, sigma) of the GPD tail.
func (s *Spot) TailParameters() (gamma, sigma float64) {
	return s.tail.Gamma(), s.tail.Sigma()
}

// PeaksMean returns the mean of the excess magnitudes currently stored in
// the tail's peaks buffer.
func (s *Spot) PeaksMean() float64 { return s.tail.Peaks().Mean() }

// PeaksVariance returns the biased variance of the excess magnitudes
// currently stored in the tail's peaks buffer.
func (s *Spot) PeaksVariance() float64 { return s.tail.Peaks().Variance() }

// PeaksMin returns the minimum excess magnitude currently stored.
func (s *Spot) PeaksMin() float64 { return s.tail.Peaks().Min() }

// PeaksMax returns the maximum excess magnitude currently stored.
func (s *Spot) PeaksMax() float64 { return s.tail.Peaks().Max() }

// Fitted reports whether Fit has completed successfully.
func (s *Spot) Fitted() bool { return s.fitted }

// Config returns the effective configuration the detector was constructed
// with.
func (s *Spot) Config() SpotConfig { return s.config }

// Quantile returns the value x such that P(X > x) = q, extrapolated from
// the fitted tail using the empirical tail-entry rate NumExcesses()/N().
// It returns NaN before Fit or before any Step call.
func (s *Spot) Quantile(q float64) float64 {
	if s.n == 0 {
		return math.NaN()
	}
	rate := float64(s.nt) / float64(s.n)
	return s.upDown * (s.t + s.tail.Quantile(q/rate))
}

// Probability returns the estimated tail-exceedance probability P(X > x)
// for a value x, the inverse of Quantile. It returns NaN before Fit or
// before any Step call.
func (s *Spot) Probability(x float64) float64 {
	if s.n == 0 {
		return math.NaN()
	}
	rate := float64(s.nt) / float64(s.n)
	return rate * s.tail.Probability(s.upDown*x-s.t)
}

package spot

import (
	"log/slog"
	"math"
)

// Tail bundles the running Peaks statistics over excess magnitudes with the
// Generalized Pareto Distribution parameters (gamma, sigma) fitted to them.
type Tail struct {
	peaks *Peaks
	gamma float64
	sigma float64
}

// NewTail allocates a Tail whose Peaks ring has the given capacity. gamma
// and sigma are zero until the first successful Fit.
func NewTail(capacity int) *Tail {
	return &Tail{peaks: NewPeaks(capacity)}
}

// Push inserts a new excess magnitude into the tail's Peaks without
// refitting. Callers that want an updated fit call Fit afterward.
func (t *Tail) Push(x float64) {
	t.peaks.Push(x)
}

// Fit refits (gamma, sigma) from the current Peaks using the Grimshaw
// estimator with a method-of-moments fallback. Numerical failures leave
// (gamma, sigma) unchanged and are reported via ok=false.
func (t *Tail) Fit(logger *slog.Logger) (ok bool) {
	if t.peaks.Count() == 0 {
		return false
	}
	fit := fitGPD(t.peaks, logger)
	if math.IsNaN(fit.logLikelihood) || math.IsInf(fit.logLikelihood, -1) || fit.sigma <= 0 {
		if logger == nil {
			logger = discardLogger
		}
		logger.Warn("spot: GPD fit produced no usable parameters, keeping previous tail estimate",
			"peaks_count", t.peaks.Count())
		return false
	}
	t.gamma, t.sigma = fit.gamma, fit.sigma
	return true
}

// Gamma returns the fitted shape parameter.
func (t *Tail) Gamma() float64 { return t.gamma }

// Sigma returns the fitted scale parameter.
func (t *Tail) Sigma() float64 { return t.sigma }

// Peaks returns the underlying Peaks statistics.
func (t *Tail) Peaks() *Peaks { return t.peaks }

// Quantile returns the excess magnitude y such that the tail survival
// probability above y equals r, per the GPD inverse CDF:
//
//	y = (sigma/gamma) * (r^-gamma - 1)   if |gamma| > 1e-12
//	y = -sigma * ln(r)                   otherwise
func (t *Tail) Quantile(r float64) float64 {
	if t.sigma <= 0 {
		return math.NaN()
	}
	if math.Abs(t.gamma) > 1e-12 {
		return (t.sigma / t.gamma) * (math.Pow(r, -t.gamma) - 1)
	}
	return -t.sigma * math.Log(r)
}

// Probability returns the tail survival probability r such that y is the
// Quantile(r) excess magnitude, inverting Quantile.
func (t *Tail) Probability(y float64) float64 {
	if t.sigma <= 0 {
		return math.NaN()
	}
	if math.Abs(t.gamma) > 1e-12 {
		return math.Pow(1+t.gamma*y/t.sigma, -1/t.gamma)
	}
	return math.Exp(-y / t.sigma)
}

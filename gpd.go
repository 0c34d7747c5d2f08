package spot

import (
	"log/slog"
	"math"
)

const (
	gpdRootTolerance   = 1e-12
	gpdMaxRootIter     = 150
	gpdBracketEpsilon  = 1e-9
)

// gpdFit holds the result of fitting Generalized Pareto Distribution
// parameters to a set of excesses, plus the log-likelihood achieved.
type gpdFit struct {
	gamma          float64
	sigma          float64
	logLikelihood  float64
}

// fitGPD estimates (gamma, sigma) for the excesses currently in peaks using
// Grimshaw's root-finding method, falling back to method-of-moments when no
// usable root is found. logger may be nil.
func fitGPD(peaks *Peaks, logger *slog.Logger) gpdFit {
	if logger == nil {
		logger = discardLogger
	}

	candidates := make([]gpdFit, 0, 3)
	candidates = append(candidates, gpdCandidateFromRoot(0, peaks))

	for _, x := range grimshawRoots(peaks) {
		candidates = append(candidates, gpdCandidateFromRoot(x, peaks))
	}

	best, ok := bestCandidate(candidates)
	if !ok {
		logger.Debug("spot: grimshaw search found no finite-likelihood root, falling back to method of moments",
			"peaks_count", peaks.Count())
		return fitMethodOfMoments(peaks, logger)
	}
	return best
}

// gpdCandidateFromRoot converts a root x of the Grimshaw w(x) equation into
// GPD parameters and evaluates the resulting log-likelihood. x == 0 is the
// trivial root, corresponding to gamma = 0.
func gpdCandidateFromRoot(x float64, peaks *Peaks) gpdFit {
	var gamma, sigma float64
	if x == 0 {
		gamma, sigma = 0, peaks.Mean()
	} else {
		v := grimshawV(x, peaks)
		gamma = v - 1
		sigma = gamma / x
	}
	return gpdFit{gamma: gamma, sigma: sigma, logLikelihood: gpdLogLikelihood(peaks, gamma, sigma)}
}

// bestCandidate returns the candidate with the largest finite
// log-likelihood and positive sigma, if any exists.
func bestCandidate(candidates []gpdFit) (gpdFit, bool) {
	best := gpdFit{logLikelihood: math.Inf(-1)}
	found := false
	for _, c := range candidates {
		if !math.IsNaN(c.logLikelihood) && !math.IsInf(c.logLikelihood, 0) && c.sigma > 0 {
			if !found || c.logLikelihood > best.logLikelihood {
				best = c
				found = true
			}
		}
	}
	return best, found
}

// grimshawU and grimshawV are the Grimshaw reparameterization's two
// building blocks:
//
//	u(x) = (1/Nt) * sum 1/(1 + x*y_i)
//	v(x) = 1 + (1/Nt) * sum ln(1 + x*y_i)
func grimshawU(x float64, peaks *Peaks) float64 {
	n := peaks.Count()
	sum := 0.0
	for i := 0; i < n; i++ {
		s := 1 + x*peaks.At(i)
		if s <= 0 {
			return math.NaN()
		}
		sum += 1 / s
	}
	return sum / float64(n)
}

func grimshawV(x float64, peaks *Peaks) float64 {
	n := peaks.Count()
	sum := 0.0
	for i := 0; i < n; i++ {
		s := 1 + x*peaks.At(i)
		if s <= 0 {
			return math.NaN()
		}
		sum += math.Log1p(x * peaks.At(i))
	}
	return 1 + sum/float64(n)
}

// grimshawW is the function whose roots correspond to maximum-likelihood
// GPD parameter estimates: w(x) = u(x)*v(x) - 1.
func grimshawW(x float64, peaks *Peaks) float64 {
	u := grimshawU(x, peaks)
	if math.IsNaN(u) {
		return math.NaN()
	}
	v := grimshawV(x, peaks)
	if math.IsNaN(v) {
		return math.NaN()
	}
	return u*v - 1
}

// grimshawRoots searches the two classical Grimshaw brackets for sign
// changes of w and refines each with a hybrid bisection/Newton search.
func grimshawRoots(peaks *Peaks) []float64 {
	yMin := peaks.Min()
	yMean := peaks.Mean()
	yMax := peaks.Max()

	if yMax <= 0 || yMin <= 0 {
		return nil
	}

	eps := gpdBracketEpsilon
	roots := make([]float64, 0, 2)

	// Left bracket: x in (-1/y_max, 0).
	lo, hi := -1/yMax+eps, -eps
	if lo < hi {
		if x, ok := findRoot(lo, hi, func(x float64) float64 { return grimshawW(x, peaks) }); ok {
			roots = append(roots, x)
		}
	}

	// Right bracket: x in (0, upper bound].
	upper := 2 * (yMean - yMin) / (yMin * yMean)
	if !isFinitePositive(upper) || math.IsInf(upper, 1) {
		upper = 1e8
	}
	lo, hi = eps, upper
	if lo < hi {
		if x, ok := findRoot(lo, hi, func(x float64) float64 { return grimshawW(x, peaks) }); ok {
			roots = append(roots, x)
		}
	}

	return roots
}

// findRoot brackets and refines a root of f within [lo, hi] using bisection
// with an opportunistic Newton step: the Newton update is taken whenever it
// stays inside the current bracket and at least halves the residual;
// bisection is used otherwise. It returns ok=false if f does not bracket a
// sign change or does not converge within the iteration cap.
func findRoot(lo, hi float64, f func(float64) float64) (float64, bool) {
	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) {
		return 0, false
	}
	if flo == 0 {
		return lo, true
	}
	if fhi == 0 {
		return hi, true
	}
	if (flo > 0) == (fhi > 0) {
		return 0, false
	}

	a, b, fa := lo, hi, flo
	x := 0.5 * (a + b)
	fx := f(x)

	for i := 0; i < gpdMaxRootIter; i++ {
		if math.IsNaN(fx) {
			return 0, false
		}
		if math.Abs(fx) < gpdRootTolerance || math.Abs(b-a) < gpdRootTolerance*math.Max(1, math.Abs(x)) {
			return x, true
		}

		if (fx > 0) == (fa > 0) {
			a, fa = x, fx
		} else {
			b = x
		}

		next := newtonStep(x, fx, a, b, f)
		if next > a && next < b && math.Abs(evalSafe(f, next)) < math.Abs(fx)/2 {
			x = next
		} else {
			x = 0.5 * (a + b)
		}
		fx = f(x)
	}
	if math.Abs(fx) < gpdRootTolerance {
		return x, true
	}
	return 0, false
}

// newtonStep computes one Newton-Raphson update using a numerically
// estimated derivative, clamped to the current bracket by the caller.
func newtonStep(x, fx, a, b float64, f func(float64) float64) float64 {
	h := (b - a) * 1e-6
	if h == 0 {
		return x
	}
	deriv := (f(x+h) - f(x-h)) / (2 * h)
	if deriv == 0 || math.IsNaN(deriv) {
		return x
	}
	return x - fx/deriv
}

func evalSafe(f func(float64) float64, x float64) float64 {
	v := f(x)
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// gpdLogLikelihood computes the GPD log-likelihood
//
//	l(gamma, sigma) = -Nt*ln(sigma) - (1+1/gamma) * sum ln(1 + gamma*y_i/sigma)
//
// with the gamma = 0 limit form l = -Nt*ln(sigma) - (1/sigma)*sum(y_i).
func gpdLogLikelihood(peaks *Peaks, gamma, sigma float64) float64 {
	n := peaks.Count()
	if n == 0 || sigma <= 0 {
		return math.Inf(-1)
	}
	if gamma == 0 {
		return -float64(n)*math.Log(sigma) - peaks.Sum()/sigma
	}
	c := 1 + 1/gamma
	x := gamma / sigma
	ll := -float64(n) * math.Log(sigma)
	for i := 0; i < n; i++ {
		term := 1 + x*peaks.At(i)
		if term <= 0 {
			return math.Inf(-1)
		}
		ll -= c * math.Log1p(x*peaks.At(i))
	}
	return ll
}

// fitMethodOfMoments estimates (gamma, sigma) from the first two sample
// moments of the excesses, per spec: gamma = 0.5*(mean^2/var - 1),
// sigma = 0.5*mean*(mean^2/var + 1). If the variance is non-positive or the
// result would yield sigma <= 0, it degenerates to gamma = 0, sigma = mean.
func fitMethodOfMoments(peaks *Peaks, logger *slog.Logger) gpdFit {
	if logger == nil {
		logger = discardLogger
	}

	mean := peaks.Mean()
	variance := peaks.Variance()

	degenerate := gpdFit{gamma: 0, sigma: mean, logLikelihood: gpdLogLikelihood(peaks, 0, mean)}

	if variance <= 0 {
		return degenerate
	}

	r := mean * mean / variance
	gamma := 0.5 * (r - 1)
	sigma := 0.5 * mean * (r + 1)
	if sigma <= 0 {
		return degenerate
	}

	return gpdFit{gamma: gamma, sigma: sigma, logLikelihood: gpdLogLikelihood(peaks, gamma, sigma)}
}

var discardLogger = slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

package spot

import (
	"math"
	"math/rand"
	"testing"
)

func TestTailFitEmptyFails(t *testing.T) {
	tail := NewTail(10)
	if tail.Fit(nil) {
		t.Fatal("Fit on empty tail should fail")
	}
	if tail.Gamma() != 0 || tail.Sigma() != 0 {
		t.Errorf("gamma/sigma = %v/%v, want 0/0 before any fit", tail.Gamma(), tail.Sigma())
	}
}

func TestTailFitWithDataProducesPositiveSigma(t *testing.T) {
	tail := NewTail(50)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		tail.Push(rng.ExpFloat64())
	}
	if !tail.Fit(nil) {
		t.Fatal("Fit should succeed with 50 exponential excesses")
	}
	if tail.Sigma() <= 0 {
		t.Errorf("Sigma() = %v, want > 0", tail.Sigma())
	}
}

func TestTailQuantileNonNegativeForValidProbability(t *testing.T) {
	tail := NewTail(10)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 10; i++ {
		tail.Push(rng.ExpFloat64())
	}
	tail.Fit(nil)

	for _, r := range []float64{0.5, 0.1, 0.01, 0.001} {
		y := tail.Quantile(r)
		if math.IsNaN(y) || y < 0 {
			t.Errorf("Quantile(%v) = %v, want finite and non-negative", r, y)
		}
	}
}

func TestTailQuantileGammaZero(t *testing.T) {
	tail := &Tail{peaks: NewPeaks(5), gamma: 0, sigma: 2}
	y := tail.Quantile(0.1)
	want := -2 * math.Log(0.1)
	if math.Abs(y-want) > 1e-9 {
		t.Errorf("Quantile(0.1) = %v, want %v", y, want)
	}
}

func TestTailProbabilityInvertsQuantile(t *testing.T) {
	tail := &Tail{peaks: NewPeaks(5), gamma: 0.2, sigma: 3}
	r := 0.05
	y := tail.Quantile(r)
	got := tail.Probability(y)
	if math.Abs(got-r) > 1e-9 {
		t.Errorf("Probability(Quantile(%v)) = %v, want %v", r, got, r)
	}
}

func TestTailInvalidSigmaYieldsNaN(t *testing.T) {
	tail := &Tail{peaks: NewPeaks(5), gamma: 0.1, sigma: 0}
	if !math.IsNaN(tail.Quantile(0.1)) {
		t.Error("Quantile with sigma=0 should be NaN")
	}
	if !math.IsNaN(tail.Probability(1.0)) {
		t.Error("Probability with sigma=0 should be NaN")
	}
}

package spot

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(SpotConfig{Q: 0.5, Level: 0.99, MaxExcess: 10}, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New() err = %v, want ErrInvalidConfig", err)
	}
}

func TestStepBeforeFitReturnsNotFitted(t *testing.T) {
	s, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	_, err = s.Step(1.0)
	if !errors.Is(err, ErrNotFitted) {
		t.Fatalf("Step() err = %v, want ErrNotFitted", err)
	}
}

func TestFitTooFewSamplesFails(t *testing.T) {
	s, _ := New(DefaultConfig(), nil)
	samples := make([]float64, 10)
	for i := range samples {
		samples[i] = float64(i)
	}
	if err := s.Fit(samples); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Fit() err = %v, want ErrInsufficientData", err)
	}
}

func TestNewRejectsQGreaterThanOneMinusLevel(t *testing.T) {
	_, err := New(SpotConfig{Q: 0.5, Level: 0.99, MaxExcess: 10}, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New() err = %v, want ErrInvalidConfig", err)
	}
}

func TestFitAndStepOnSineWave(t *testing.T) {
	cfg := SpotConfig{Q: 1e-4, Level: 0.998, MaxExcess: 200, DiscardAnomalies: true}
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	training := make([]float64, 1000)
	for i := range training {
		training[i] = 5 + 2*math.Sin(0.01*float64(i))
	}
	if err := s.Fit(training); err != nil {
		t.Fatalf("Fit() failed: %v", err)
	}

	if t1 := s.ExcessThreshold(); t1 < 6.9 || t1 > 7.1 {
		t.Errorf("ExcessThreshold() = %v, want in [6.9, 7.1]", t1)
	}

	status, err := s.Step(50.0)
	if err != nil {
		t.Fatalf("Step(50.0) failed: %v", err)
	}
	if status != Anomaly {
		t.Errorf("Step(50.0) = %v, want Anomaly", status)
	}
	if s.N() != 1 {
		t.Errorf("N() = %d, want 1", s.N())
	}

	status, err = s.Step(5.0)
	if err != nil {
		t.Fatalf("Step(5.0) failed: %v", err)
	}
	if status != Normal {
		t.Errorf("Step(5.0) = %v, want Normal", status)
	}
}

func TestLowTailModeDetectsNegativeAnomaly(t *testing.T) {
	cfg := SpotConfig{Q: 1e-4, Level: 0.998, MaxExcess: 200, DiscardAnomalies: true, LowTail: true}
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	training := make([]float64, 1000)
	for i := range training {
		training[i] = -5 + 2*math.Sin(0.01*float64(i))
	}
	if err := s.Fit(training); err != nil {
		t.Fatalf("Fit() failed: %v", err)
	}

	status, err := s.Step(-50.0)
	if err != nil {
		t.Fatalf("Step(-50.0) failed: %v", err)
	}
	if status != Anomaly {
		t.Errorf("Step(-50.0) = %v, want Anomaly", status)
	}
}

func TestBoundaryExactlyAtExcessThresholdIsNormal(t *testing.T) {
	s, cfg := mustFittedSpot(t, 0.9)
	_ = cfg
	threshold := s.ExcessThreshold()
	status, err := s.Step(threshold)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if status != Normal {
		t.Errorf("Step(t) = %v, want Normal", status)
	}
}

func TestBoundaryExactlyAtAnomalyThresholdIsExcess(t *testing.T) {
	s, _ := mustFittedSpot(t, 0.9)
	threshold := s.AnomalyThreshold()
	status, err := s.Step(threshold)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if status != Excess {
		t.Errorf("Step(z) = %v, want Excess (x == z is strict inequality for Anomaly)", status)
	}
}

func TestAnomalyThresholdNeverBelowExcessThreshold(t *testing.T) {
	s, _ := mustFittedSpot(t, 0.9)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		s.Step(rng.NormFloat64()*5 + 50)
		if s.AnomalyThreshold() < s.ExcessThreshold() {
			t.Fatalf("z (%v) < t (%v) after step %d", s.AnomalyThreshold(), s.ExcessThreshold(), i)
		}
	}
}

func TestMinimalMaxExcessFitsAndSteps(t *testing.T) {
	cfg := SpotConfig{Q: 0.05, Level: 0.9, MaxExcess: 5, DiscardAnomalies: true}
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	training := make([]float64, 50)
	rng := rand.New(rand.NewSource(11))
	for i := range training {
		training[i] = rng.NormFloat64()*5 + 50
	}
	if err := s.Fit(training); err != nil {
		t.Fatalf("Fit() failed: %v", err)
	}
	if _, err := s.Step(50.0); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
}

func TestDeterministicStepGivenFixedState(t *testing.T) {
	s1, _ := mustFittedSpot(t, 0.95)
	snap := s1.Snapshot()
	s2 := RestoreSpot(snap, nil)

	inputs := []float64{51, 60, 45, 70, 1000, 50.5}
	for _, x := range inputs {
		st1, err1 := s1.Step(x)
		st2, err2 := s2.Step(x)
		if st1 != st2 || (err1 == nil) != (err2 == nil) {
			t.Fatalf("diverging step for x=%v: (%v,%v) vs (%v,%v)", x, st1, err1, st2, err2)
		}
	}
}

func TestTwoIndependentFitsAgree(t *testing.T) {
	training := make([]float64, 2000)
	rng := rand.New(rand.NewSource(99))
	for i := range training {
		training[i] = rng.NormFloat64()
	}

	s1, _ := New(DefaultConfig(), nil)
	s2, _ := New(DefaultConfig(), nil)
	if err := s1.Fit(training); err != nil {
		t.Fatalf("s1.Fit() failed: %v", err)
	}
	if err := s2.Fit(training); err != nil {
		t.Fatalf("s2.Fit() failed: %v", err)
	}

	if math.Abs(s1.ExcessThreshold()-s2.ExcessThreshold()) > 1e-9*math.Max(1, math.Abs(s1.ExcessThreshold())) {
		t.Errorf("ExcessThreshold diverges: %v vs %v", s1.ExcessThreshold(), s2.ExcessThreshold())
	}
	if math.Abs(s1.AnomalyThreshold()-s2.AnomalyThreshold()) > 1e-9*math.Max(1, math.Abs(s1.AnomalyThreshold())) {
		t.Errorf("AnomalyThreshold diverges: %v vs %v", s1.AnomalyThreshold(), s2.AnomalyThreshold())
	}
}

// mustFittedSpot builds and fits a detector against a normal-ish training
// sample at the given level, for tests that only care about post-fit
// invariants.
func mustFittedSpot(t *testing.T, level float64) (*Spot, SpotConfig) {
	t.Helper()
	cfg := SpotConfig{Q: (1 - level) / 10, Level: level, MaxExcess: 50, DiscardAnomalies: true}
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	training := make([]float64, 1000)
	rng := rand.New(rand.NewSource(5))
	for i := range training {
		training[i] = rng.NormFloat64()*5 + 50
	}
	if err := s.Fit(training); err != nil {
		t.Fatalf("Fit() failed: %v", err)
	}
	return s, cfg
}

package spot

import "log/slog"

// SpotSnapshot is a plain-field copy of a Spot detector's state, suitable
// for callers that want to persist or transplant a detector without
// depending on any particular wire format. It captures the detector's
// persisted state layout (config, counters, thresholds, fit status, tail
// parameters, and the full peaks ring buffer) plus the running peaks max
// and the P² estimator state.
type SpotSnapshot struct {
	Config SpotConfig

	N           int
	NumExcesses int
	Fitted      bool

	ExcessThreshold  float64 // internal (mirrored) scale
	AnomalyThreshold float64 // internal (mirrored) scale

	Gamma float64
	Sigma float64

	PeaksSum          float64
	PeaksSumOfSquares float64
	PeaksMin          float64
	PeaksMax          float64

	RingCapacity int
	RingCursor   int
	RingFilled   bool
	RingData     []float64

	P2 P2Snapshot
}

// P2Snapshot is a plain-field copy of the P² quantile estimator's state.
// It is only meaningful while the detector has not yet been fitted: Fit
// consumes the P² estimator to derive the excess threshold and does not
// use it again afterward.
type P2Snapshot struct {
	Height    [5]float64
	Pos       [5]float64
	Desired   [5]float64
	Increment [5]float64
	Count     int
	Init      [5]float64
}

// Snapshot captures the detector's current state as a plain SpotSnapshot.
// The returned value shares no memory with the detector: subsequent Step
// or Fit calls on s do not affect it.
func (s *Spot) Snapshot() SpotSnapshot {
	ring := s.tail.Peaks().ring
	data := make([]float64, len(ring.data))
	copy(data, ring.data)

	return SpotSnapshot{
		Config:            s.config,
		N:                 s.n,
		NumExcesses:       s.nt,
		Fitted:            s.fitted,
		ExcessThreshold:   s.t,
		AnomalyThreshold:  s.z,
		Gamma:             s.tail.Gamma(),
		Sigma:             s.tail.Sigma(),
		PeaksSum:          s.tail.Peaks().Sum(),
		PeaksSumOfSquares: s.tail.Peaks().SumOfSquares(),
		PeaksMin:          s.tail.Peaks().Min(),
		PeaksMax:          s.tail.Peaks().Max(),
		RingCapacity:      ring.capacity,
		RingCursor:        ring.cursor,
		RingFilled:        ring.filled,
		RingData:          data,
		P2: P2Snapshot{
			Height:    s.p2.height,
			Pos:       s.p2.pos,
			Desired:   s.p2.desired,
			Increment: s.p2.increment,
			Count:     s.p2.count,
			Init:      s.p2.init,
		},
	}
}

// RestoreSpot reconstructs a Spot detector from a snapshot previously
// produced by Snapshot. The returned detector behaves identically to the
// one the snapshot was taken from, including on subsequent Step calls.
// logger may be nil, in which case diagnostic logging is discarded.
func RestoreSpot(snap SpotSnapshot, logger *slog.Logger) *Spot {
	if logger == nil {
		logger = discardLogger
	}

	upDown := 1.0
	if snap.Config.LowTail {
		upDown = -1.0
	}

	ring := &Ubend{
		data:     append([]float64(nil), snap.RingData...),
		capacity: snap.RingCapacity,
		cursor:   snap.RingCursor,
		filled:   snap.RingFilled,
	}
	peaks := &Peaks{
		ring:         ring,
		sum:          snap.PeaksSum,
		sumOfSquares: snap.PeaksSumOfSquares,
		min:          snap.PeaksMin,
		max:          snap.PeaksMax,
	}
	tail := &Tail{
		peaks: peaks,
		gamma: snap.Gamma,
		sigma: snap.Sigma,
	}
	p2 := &P2{
		p:         snap.Config.Level,
		height:    snap.P2.Height,
		pos:       snap.P2.Pos,
		desired:   snap.P2.Desired,
		increment: snap.P2.Increment,
		count:     snap.P2.Count,
		init:      snap.P2.Init,
	}

	return &Spot{
		config: snap.Config,
		upDown: upDown,
		n:      snap.N,
		nt:     snap.NumExcesses,
		t:      snap.ExcessThreshold,
		z:      snap.AnomalyThreshold,
		p2:     p2,
		tail:   tail,
		fitted: snap.Fitted,
		logger: logger,
	}
}

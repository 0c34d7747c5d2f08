package spot

// Peaks maintains running summary statistics over the excess magnitudes
// currently stored in a fixed-capacity Ubend: sum, sum of squares, min, and
// max. The running statistics are kept in sync incrementally on every push
// and, when an eviction removes the current min or max, by rescanning the
// live slots of the ring.
type Peaks struct {
	ring          *Ubend
	sum           float64
	sumOfSquares  float64
	min           float64
	max           float64
}

// NewPeaks allocates a Peaks backed by a ring of the given capacity.
func NewPeaks(capacity int) *Peaks {
	return &Peaks{
		ring: NewUbend(capacity),
		min:  0,
		max:  0,
	}
}

// Push inserts a new excess magnitude, evicting the oldest one if the ring
// is already full. The running sum, sum of squares, min, and max are
// updated to reflect exactly the values currently live in the ring.
func (p *Peaks) Push(x float64) {
	evicted, hadEviction := p.ring.Push(x)

	wasEmpty := p.ring.Len() == 1 && !hadEviction
	p.sum += x
	p.sumOfSquares += x * x
	if wasEmpty || x < p.min {
		p.min = x
	}
	if wasEmpty || x > p.max {
		p.max = x
	}

	if hadEviction {
		p.sum -= evicted
		p.sumOfSquares -= evicted * evicted
		if evicted <= p.min || evicted >= p.max {
			p.rescan()
		}
	}
}

// rescan recomputes sum, sum of squares, min, and max directly from the
// live ring contents. It is only needed after an eviction removes the
// current min or max, where incremental bookkeeping can no longer tell us
// the next extreme value without looking at the data.
func (p *Peaks) rescan() {
	n := p.ring.Len()
	if n == 0 {
		p.sum, p.sumOfSquares, p.min, p.max = 0, 0, 0, 0
		return
	}
	sum, sumSq := 0.0, 0.0
	min, max := p.ring.At(0), p.ring.At(0)
	for i := 0; i < n; i++ {
		v := p.ring.At(i)
		sum += v
		sumSq += v * v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	p.sum, p.sumOfSquares, p.min, p.max = sum, sumSq, min, max
}

// Count returns the number of excess magnitudes currently stored.
func (p *Peaks) Count() int {
	return p.ring.Len()
}

// Mean returns sum/count. The result is only meaningful when Count() > 0;
// callers must check.
func (p *Peaks) Mean() float64 {
	n := p.ring.Len()
	if n == 0 {
		return 0
	}
	return p.sum / float64(n)
}

// Variance returns the biased population variance sum_of_squares/n -
// mean^2. The result is only meaningful when Count() > 0.
func (p *Peaks) Variance() float64 {
	n := p.ring.Len()
	if n == 0 {
		return 0
	}
	mean := p.sum / float64(n)
	return p.sumOfSquares/float64(n) - mean*mean
}

// Min returns the minimum live excess magnitude.
func (p *Peaks) Min() float64 {
	return p.min
}

// Max returns the maximum live excess magnitude.
func (p *Peaks) Max() float64 {
	return p.max
}

// Sum returns the running sum of live excess magnitudes.
func (p *Peaks) Sum() float64 {
	return p.sum
}

// SumOfSquares returns the running sum of squares of live excess magnitudes.
func (p *Peaks) SumOfSquares() float64 {
	return p.sumOfSquares
}

// At returns the i-th live excess magnitude; used by the GPD estimator to
// walk the tail sample.
func (p *Peaks) At(i int) float64 {
	return p.ring.At(i)
}

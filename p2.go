package spot

// P2 is the Jain-Chlamtac "P²" streaming quantile estimator. It estimates a
// single target quantile of a data stream in O(1) time and space per
// sample, using five markers that track both observed heights and their
// rank positions.
type P2 struct {
	p float64 // target probability

	height   [5]float64 // marker heights, sorted
	pos      [5]float64 // marker positions (1-based rank)
	desired  [5]float64 // desired positions
	increment [5]float64 // desired-position increments per sample

	count int // samples observed so far
	init  [5]float64
}

// NewP2 returns a P² estimator targeting quantile p, where p is in (0, 1).
func NewP2(p float64) *P2 {
	e := &P2{p: p}
	e.increment = [5]float64{0, p / 2, p, (1 + p) / 2, 1}
	e.desired = [5]float64{1, 1 + 2*p, 1 + 4*p, 3 + 2*p, 5}
	return e
}

// Observe feeds a new sample into the estimator.
func (e *P2) Observe(x float64) {
	if e.count < 5 {
		e.init[e.count] = x
		e.count++
		if e.count == 5 {
			insertionSort5(&e.init)
			e.height = e.init
			e.pos = [5]float64{1, 2, 3, 4, 5}
		}
		return
	}

	switch {
	case x < e.height[0]:
		e.height[0] = x
	case x >= e.height[4]:
		e.height[4] = x
	}

	k := e.cell(x)
	for i := k + 1; i < 5; i++ {
		e.pos[i]++
	}
	for i := 0; i < 5; i++ {
		e.desired[i] += e.increment[i]
	}

	for i := 1; i < 4; i++ {
		d := e.desired[i] - e.pos[i]
		if (d >= 1 && e.pos[i+1]-e.pos[i] > 1) || (d <= -1 && e.pos[i-1]-e.pos[i] < -1) {
			s := sign(d)
			h := e.parabolic(i, s)
			if !(e.height[i-1] < h && h < e.height[i+1]) {
				h = e.linear(i, s)
			}
			e.height[i] = h
			e.pos[i] += s
		}
	}
}

// cell finds k in {0,1,2,3} such that height[k] <= x < height[k+1], for the
// purpose of incrementing the positions of the markers above it. The
// boundary cases (x below the min or at/above the max) are handled by the
// caller before cell is reached.
func (e *P2) cell(x float64) int {
	for k := 0; k < 3; k++ {
		if x < e.height[k+1] {
			return k
		}
	}
	return 3
}

// parabolic computes the P² parabolic height adjustment for marker i in
// direction d (+1 or -1).
func (e *P2) parabolic(i int, d float64) float64 {
	return e.height[i] + d/(e.pos[i+1]-e.pos[i-1])*
		((e.pos[i]-e.pos[i-1]+d)*(e.height[i+1]-e.height[i])/(e.pos[i+1]-e.pos[i])+
			(e.pos[i+1]-e.pos[i]-d)*(e.height[i]-e.height[i-1])/(e.pos[i]-e.pos[i-1]))
}

// linear falls back to linear interpolation toward the neighbor in
// direction d when the parabolic estimate would leave the sorted order.
func (e *P2) linear(i int, d float64) float64 {
	j := i + int(d)
	return e.height[i] + d*(e.height[j]-e.height[i])/(e.pos[j]-e.pos[i])
}

// Quantile returns the current estimate of the target quantile: the center
// marker once at least 5 samples have been observed, or the running
// maximum as a defensive fallback before that.
func (e *P2) Quantile() float64 {
	if e.count < 5 {
		max := 0.0
		for i := 0; i < e.count; i++ {
			if i == 0 || e.init[i] > max {
				max = e.init[i]
			}
		}
		return max
	}
	return e.height[2]
}

// Count returns the number of samples observed so far.
func (e *P2) Count() int {
	return e.count
}

// insertionSort5 sorts a fixed 5-element array ascending in place.
func insertionSort5(a *[5]float64) {
	for i := 1; i < 5; i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

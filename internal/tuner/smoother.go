package tuner

import "gonum.org/v1/gonum/stat"

// DefaultSmoothing is the number of recent estimates averaged by --smooth
const DefaultSmoothing = 50

// Smoother keeps a moving average over the last N frequency estimates.
// The oldest estimate is dropped first. It is owned by a single loop.
type Smoother struct {
	size   int
	values []float64
}

// NewSmoother creates a smoother over size estimates
func NewSmoother(size int) *Smoother {
	size = max(size, 1)
	return &Smoother{
		size:   size,
		values: make([]float64, 0, size),
	}
}

// Add records an estimate and returns the current average
func (s *Smoother) Add(frequency float64) float64 {
	if len(s.values) == s.size {
		copy(s.values, s.values[1:])
		s.values = s.values[:s.size-1]
	}
	s.values = append(s.values, frequency)
	return s.Mean()
}

// Mean returns the average of the stored estimates, 0 when empty
func (s *Smoother) Mean() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return stat.Mean(s.values, nil)
}

// Len returns the number of stored estimates
func (s *Smoother) Len() int {
	return len(s.values)
}

// Reset drops all estimates
func (s *Smoother) Reset() {
	s.values = s.values[:0]
}

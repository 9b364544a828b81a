package pitch

import (
	"fmt"
	"math"
)

// Config holds the detection thresholds. It is passed by value to the
// detector constructors and never changes afterwards.
type Config struct {
	SilenceRMS    float64 // Buffers quieter than this are treated as silence
	MinConfidence float64 // Normalized correlation must exceed this

	// Lag search window in samples, [MinLag, MaxLag)
	MinLag int
	MaxLag int

	// When both are set the lag window is derived from the sample rate
	MinFrequency float64
	MaxFrequency float64

	// The first correlation peak reaching PeakRatio of the best one wins,
	// which keeps sub-octave lags from beating the true period. 1 selects
	// the plain maximum.
	PeakRatio float64
}

// DefaultConfig returns the thresholds tuned for 44.1/48 kHz input
func DefaultConfig() Config {
	return Config{
		SilenceRMS:    0.01,
		MinConfidence: 0.01,
		MinLag:        32,
		MaxLag:        512,
		PeakRatio:     0.9,
	}
}

// Validate checks that the config describes a usable search
func (c Config) Validate() error {
	if c.SilenceRMS < 0 || math.IsNaN(c.SilenceRMS) {
		return fmt.Errorf("%w: silence threshold %v", ErrInvalidConfig, c.SilenceRMS)
	}
	if math.IsNaN(c.MinConfidence) {
		return fmt.Errorf("%w: confidence threshold is NaN", ErrInvalidConfig)
	}
	if !(c.PeakRatio > 0 && c.PeakRatio <= 1) {
		return fmt.Errorf("%w: peak ratio %v not in (0, 1]", ErrInvalidConfig, c.PeakRatio)
	}

	if c.MinFrequency != 0 || c.MaxFrequency != 0 {
		if !(c.MinFrequency > 0 && c.MaxFrequency > c.MinFrequency) {
			return fmt.Errorf("%w: frequency range [%v, %v]", ErrInvalidConfig, c.MinFrequency, c.MaxFrequency)
		}
		return nil
	}

	if c.MinLag < 1 || c.MaxLag <= c.MinLag {
		return fmt.Errorf("%w: lag window [%d, %d)", ErrInvalidConfig, c.MinLag, c.MaxLag)
	}
	return nil
}

func (c Config) frequencyBound() bool {
	return c.MinFrequency > 0 && c.MaxFrequency > 0
}

// LagWindow returns the lag search window [lo, hi) for a sample rate
func (c Config) LagWindow(sampleRate int) (lo, hi int) {
	if !c.frequencyBound() {
		return c.MinLag, c.MaxLag
	}

	sr := float64(sampleRate)
	lo = max(int(math.Floor(sr/c.MaxFrequency)), 1)
	hi = int(math.Ceil(sr/c.MinFrequency)) + 1
	return lo, hi
}

// FrequencyRange returns the detectable frequency range for a sample rate
func (c Config) FrequencyRange(sampleRate int) (lo, hi float64) {
	if c.frequencyBound() {
		return c.MinFrequency, c.MaxFrequency
	}

	sr := float64(sampleRate)
	return sr / float64(c.MaxLag-1), sr / float64(c.MinLag)
}

package pitch

import (
	"math"

	"github.com/0xlemi/notefinder/internal/audio"
	"gonum.org/v1/gonum/floats"
)

// AutocorrelationDetector estimates pitch from the time-domain
// autocorrelation of the buffer. It holds no state besides its config, so a
// single instance may be shared between goroutines.
type AutocorrelationDetector struct {
	config Config
}

// NewAutocorrelationDetector creates a detector with the given thresholds
func NewAutocorrelationDetector(config Config) (*AutocorrelationDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &AutocorrelationDetector{config: config}, nil
}

// Estimate scans the lag window for the strongest self-similarity and
// converts the winning lag to a frequency
func (d *AutocorrelationDetector) Estimate(buffer *audio.AudioBuffer) (Estimate, error) {
	if err := checkBuffer(buffer); err != nil {
		return NotDetected, err
	}

	x := buffer.Samples
	n := len(x)

	// Zero-lag autocorrelation, the mean square of the buffer
	energy := floats.Dot(x, x) / float64(n)
	rms := math.Sqrt(energy)
	if rms == 0 || rms < d.config.SilenceRMS {
		return NotDetected, nil
	}

	lo, hi := d.config.LagWindow(buffer.SampleRate)
	hi = min(hi, n) // at least one overlapping sample per lag
	if lo >= hi {
		return NotDetected, nil
	}

	corr := make([]float64, hi-lo)
	bestIdx, best := -1, math.Inf(-1)
	for lag := lo; lag < hi; lag++ {
		overlap := n - lag
		c := floats.Dot(x[:overlap], x[lag:]) / float64(overlap) / energy
		corr[lag-lo] = c

		// Strict comparison, the first lag wins ties
		if c > best {
			best = c
			bestIdx = lag - lo
		}
	}

	if best <= d.config.MinConfidence {
		return NotDetected, nil
	}

	idx := bestIdx
	if d.config.PeakRatio < 1 {
		idx = firstPeak(corr[:bestIdx+1], best*d.config.PeakRatio, bestIdx)
	}

	lag := lo + idx
	return Estimate{
		Frequency:  float64(buffer.SampleRate) / float64(lag),
		Confidence: corr[idx],
		Lag:        lag,
	}, nil
}

// firstPeak returns the index of the first interior local maximum reaching
// floor, or fallback if there is none
func firstPeak(corr []float64, floor float64, fallback int) int {
	for i := 1; i < len(corr)-1; i++ {
		if corr[i] >= floor && corr[i] > corr[i-1] && corr[i] >= corr[i+1] {
			return i
		}
	}
	return fallback
}

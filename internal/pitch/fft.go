package pitch

import (
	"math/cmplx"

	"github.com/0xlemi/notefinder/internal/audio"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// SpectralDetector implements pitch detection by picking the strongest bin
// of the magnitude spectrum. It is kept as an alternative to the
// autocorrelation detector; it tends to lock onto loud harmonics.
type SpectralDetector struct {
	config Config
}

// NewSpectralDetector creates an FFT-based pitch detector
func NewSpectralDetector(config Config) (*SpectralDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SpectralDetector{config: config}, nil
}

// Estimate analyzes an audio buffer and returns the peak frequency
func (d *SpectralDetector) Estimate(buffer *audio.AudioBuffer) (Estimate, error) {
	if err := checkBuffer(buffer); err != nil {
		return NotDetected, err
	}
	if buffer.RMS() < d.config.SilenceRMS {
		return NotDetected, nil
	}

	// Window a copy, the caller's samples stay untouched
	windowed := make([]float64, len(buffer.Samples))
	copy(windowed, buffer.Samples)
	window.Apply(windowed, window.Hann)

	spectrum := fft.FFTReal(windowed)

	// Only the first half carries information for real input
	half := spectrum[:len(spectrum)/2]
	binSizeHz := float64(buffer.SampleRate) / float64(len(spectrum))

	minFreq, maxFreq := d.config.FrequencyRange(buffer.SampleRate)
	minBin := max(int(minFreq/binSizeHz), 1) // skip DC
	maxBin := min(int(maxFreq/binSizeHz), len(half)-2)
	if minBin > maxBin {
		return NotDetected, nil
	}

	magnitudes := make([]float64, maxBin-minBin+1)
	for i := range magnitudes {
		magnitudes[i] = cmplx.Abs(half[minBin+i])
	}

	total := floats.Sum(magnitudes)
	if total == 0 {
		return NotDetected, nil
	}

	peakIdx := floats.MaxIdx(magnitudes)
	confidence := magnitudes[peakIdx] / total
	if confidence <= d.config.MinConfidence {
		return NotDetected, nil
	}

	bin := minBin + peakIdx
	return Estimate{
		Frequency:  interpolatePeak(half, bin) * binSizeHz,
		Confidence: confidence,
	}, nil
}

// interpolatePeak refines a peak bin with quadratic interpolation:
// x = k + 0.5 * (R[k-1] - R[k+1]) / (R[k-1] - 2*R[k] + R[k+1])
func interpolatePeak(half []complex128, k int) float64 {
	prev := cmplx.Abs(half[k-1])
	current := cmplx.Abs(half[k])
	next := cmplx.Abs(half[k+1])

	denom := prev - 2*current + next
	if denom == 0 {
		return float64(k)
	}
	return float64(k) + 0.5*(prev-next)/denom
}

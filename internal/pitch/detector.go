package pitch

import (
	"errors"
	"fmt"

	"github.com/0xlemi/notefinder/internal/audio"
)

// Errors
var (
	// ErrInvalidArgument marks caller bugs, as opposed to silent audio
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrEmptyBuffer       = fmt.Errorf("%w: empty audio buffer", ErrInvalidArgument)
	ErrInvalidSampleRate = fmt.Errorf("%w: sample rate must be positive", ErrInvalidArgument)

	ErrInvalidConfig = errors.New("invalid detector config")
	ErrUnknownMethod = errors.New("unknown detection method")
	ErrUnknownPolicy = errors.New("unknown note mapping policy")
)

// Estimate is the result of one pitch estimation. The zero value means no
// pitch was found.
type Estimate struct {
	Frequency  float64 // Fundamental frequency in Hz, 0 when not detected
	Confidence float64 // Normalized peak strength of the detector
	Lag        int     // Period in samples, autocorrelation only
}

// NotDetected is returned for silence or signals without clear periodicity
var NotDetected = Estimate{}

// Detected reports whether the estimate carries a frequency
func (e Estimate) Detected() bool {
	return e.Frequency > 0
}

// Detector defines the interface for pitch detection
type Detector interface {
	// Estimate analyzes an audio buffer and returns its fundamental frequency.
	// Implementations never retain or modify the buffer.
	Estimate(buffer *audio.AudioBuffer) (Estimate, error)
}

// Method names a detection strategy
type Method string

const (
	MethodAutocorrelation Method = "autocorr"
	MethodSpectral        Method = "spectral"
)

// NewDetector creates the detector for the given method
func NewDetector(method Method, config Config) (Detector, error) {
	switch method {
	case MethodAutocorrelation, "":
		return NewAutocorrelationDetector(config)
	case MethodSpectral:
		return NewSpectralDetector(config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// checkBuffer rejects malformed input before any analysis
func checkBuffer(buffer *audio.AudioBuffer) error {
	if buffer == nil || len(buffer.Samples) == 0 {
		return ErrEmptyBuffer
	}
	if buffer.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}

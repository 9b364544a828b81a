package audio

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Errors
var (
	ErrAlreadyCapturing  = errors.New("audio capture already started")
	ErrNotCapturing      = errors.New("audio capture not started")
	ErrInvalidWindow     = errors.New("window size must be positive")
	ErrUnsupportedFormat = errors.New("unsupported audio file format")
)

// silenceDB is reported for buffers with no measurable energy
const silenceDB = -100.0

// AudioBuffer represents a buffer of mono audio samples, typically in [-1, 1]
type AudioBuffer struct {
	Samples    []float64
	SampleRate int
}

// RMS returns the root mean square amplitude of the buffer
func (b *AudioBuffer) RMS() float64 {
	if b == nil || len(b.Samples) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(b.Samples, b.Samples) / float64(len(b.Samples)))
}

// Level returns the RMS amplitude and the matching level in dBFS
func (b *AudioBuffer) Level() (rms, db float64) {
	rms = b.RMS()

	// Avoid log(0)
	if rms > 0.0000001 {
		db = 20 * math.Log10(rms)
	} else {
		db = silenceDB
	}

	return rms, db
}

// Capturer defines the interface for audio capture
type Capturer interface {
	// Start begins audio capture
	Start() error

	// Stop ends audio capture
	Stop() error

	// GetBuffer returns a copy of the current analysis window
	GetBuffer() (*AudioBuffer, error)

	// IsCapturing returns true if currently capturing audio
	IsCapturing() bool
}

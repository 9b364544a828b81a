package audio

import (
	"fmt"
	"io"
	"sync"
)

// FileCapturer plays back a decoded file as a sequence of analysis windows.
// Each GetBuffer call returns the next window and advances by the hop size;
// once the samples are exhausted it returns io.EOF.
type FileCapturer struct {
	mu          sync.Mutex
	samples     []float64
	sampleRate  int
	window      int
	hop         int
	pos         int
	isCapturing bool
}

// NewFileCapturer creates a capturer over already decoded mono samples.
// A hop of zero advances by half a window.
func NewFileCapturer(samples []float64, sampleRate, window, hop int) (*FileCapturer, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if hop <= 0 {
		hop = max(window/2, 1)
	}

	return &FileCapturer{
		samples:    samples,
		sampleRate: sampleRate,
		window:     window,
		hop:        hop,
	}, nil
}

// OpenFile decodes a WAV or MP3 file and wraps it in a FileCapturer
func OpenFile(path string, window, hop int) (*FileCapturer, error) {
	samples, sampleRate, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return NewFileCapturer(samples, sampleRate, window, hop)
}

// Start begins playback from the current position
func (c *FileCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCapturing {
		return ErrAlreadyCapturing
	}
	c.isCapturing = true
	return nil
}

// Stop pauses playback
func (c *FileCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCapturing {
		return ErrNotCapturing
	}
	c.isCapturing = false
	return nil
}

// GetBuffer returns the next window. The final window may be shorter.
func (c *FileCapturer) GetBuffer() (*AudioBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCapturing {
		return nil, ErrNotCapturing
	}
	if c.pos >= len(c.samples) {
		return nil, io.EOF
	}

	end := min(c.pos+c.window, len(c.samples))
	buffer := &AudioBuffer{
		Samples:    make([]float64, end-c.pos),
		SampleRate: c.sampleRate,
	}
	copy(buffer.Samples, c.samples[c.pos:end])
	c.pos += c.hop

	return buffer, nil
}

// IsCapturing returns true if playback is running
func (c *FileCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}

// SampleRate returns the sample rate of the decoded file
func (c *FileCapturer) SampleRate() int {
	return c.sampleRate
}

// Hop returns the number of samples advanced per window
func (c *FileCapturer) Hop() int {
	return c.hop
}

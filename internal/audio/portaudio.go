package audio

import (
	"errors"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// minAmplification keeps the gain positive
const minAmplification = 0.1

// PortAudio entry points, replaced in tests
var (
	paInitialize = portaudio.Initialize
	paTerminate  = portaudio.Terminate
	paOpenInput  = func(channels int, sampleRate float64, frames int, callback func(in []float32)) (*portaudio.Stream, error) {
		return portaudio.OpenDefaultStream(channels, 0, sampleRate, frames, callback)
	}
)

// PortAudioCapturer implements microphone capture using PortAudio
type PortAudioCapturer struct {
	isCapturing   bool
	stream        *portaudio.Stream
	buffer        *AudioBuffer
	window        int
	sampleRate    int
	channels      int
	bufferMutex   sync.Mutex
	amplification float64 // Audio signal amplification factor
}

// NewPortAudioCapturer creates a capturer that delivers windows of the given
// size, mixed down to mono, from the default input device. PortAudio is only
// initialized by Start.
func NewPortAudioCapturer(window, sampleRate, channels int) (*PortAudioCapturer, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	if channels < 1 {
		channels = 1
	}

	return &PortAudioCapturer{
		buffer: &AudioBuffer{
			Samples:    make([]float64, 0, window),
			SampleRate: sampleRate,
		},
		window:        window,
		sampleRate:    sampleRate,
		channels:      channels,
		amplification: 5.0,
	}, nil
}

// Start begins audio capture
func (c *PortAudioCapturer) Start() error {
	if c.isCapturing {
		return ErrAlreadyCapturing
	}

	if err := paInitialize(); err != nil {
		return err
	}

	// Open default input stream, one callback per analysis window
	stream, err := paOpenInput(c.channels, float64(c.sampleRate), c.window, c.processAudio)
	if err != nil {
		paTerminate()
		return err
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		paTerminate()
		return err
	}
	c.stream = stream

	c.isCapturing = true
	return nil
}

// Stop ends audio capture and releases PortAudio
func (c *PortAudioCapturer) Stop() error {
	if !c.isCapturing {
		return ErrNotCapturing
	}

	// PortAudio is released even when the stream fails to stop
	c.isCapturing = false
	stopErr := c.stream.Stop()
	closeErr := c.stream.Close()
	c.stream = nil
	return errors.Join(stopErr, closeErr, paTerminate())
}

// processAudio is the PortAudio callback. Channels are averaged into mono.
func (c *PortAudioCapturer) processAudio(in []float32) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	c.buffer.Samples = mixDown(c.buffer.Samples[:0], in, c.channels, c.amplification)
}

// mixDown averages interleaved channels and applies gain, appending to dst
func mixDown(dst []float64, in []float32, channels int, gain float64) []float64 {
	frames := len(in) / channels
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(in[i*channels+ch])
		}
		dst = append(dst, sum/float64(channels)*gain)
	}
	return dst
}

// GetBuffer returns a copy of the most recent window
func (c *PortAudioCapturer) GetBuffer() (*AudioBuffer, error) {
	if !c.isCapturing {
		return nil, ErrNotCapturing
	}

	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	bufferCopy := &AudioBuffer{
		Samples:    make([]float64, len(c.buffer.Samples)),
		SampleRate: c.buffer.SampleRate,
	}
	copy(bufferCopy.Samples, c.buffer.Samples)

	return bufferCopy, nil
}

// IsCapturing returns true if currently capturing audio
func (c *PortAudioCapturer) IsCapturing() bool {
	return c.isCapturing
}

// SetAmplification sets the audio amplification factor
func (c *PortAudioCapturer) SetAmplification(factor float64) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	if factor < minAmplification {
		factor = minAmplification
	}
	c.amplification = factor
}

// Package tuner drives pitch detection: it pulls windows from a capturer on
// a fixed cadence, runs them through a detector and a note mapper, and hands
// the result to a display sink.
package tuner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/0xlemi/notefinder/internal/audio"
	"github.com/0xlemi/notefinder/internal/pitch"
)

// Reading is one displayed detection result
type Reading struct {
	Note     pitch.Note     // Note for the (possibly smoothed) frequency
	Estimate pitch.Estimate // Raw detector output for this window
}

// Sink receives loop output. Calls come from the loop goroutine only.
type Sink interface {
	// Show displays a detected note
	Show(reading Reading)
	// Clear removes the displayed note, nothing was detected this cycle
	Clear()
	// Level reports the input level of the current window
	Level(rms, db float64)
}

// Options configures a Loop
type Options struct {
	// Interval between cycles; zero runs cycles back to back
	Interval time.Duration
	// Smoothing averages the last N estimates; zero disables it
	Smoothing int
	Logger    *slog.Logger
}

// Loop is the periodic driver around a detector
type Loop struct {
	capturer audio.Capturer
	detector pitch.Detector
	mapper   pitch.Mapper
	sink     Sink
	interval time.Duration
	smoother *Smoother
	logger   *slog.Logger
}

// NewLoop wires a capturer, detector, mapper and sink together
func NewLoop(capturer audio.Capturer, detector pitch.Detector, mapper pitch.Mapper, sink Sink, opts Options) *Loop {
	l := &Loop{
		capturer: capturer,
		detector: detector,
		mapper:   mapper,
		sink:     sink,
		interval: opts.Interval,
		logger:   opts.Logger,
	}
	if opts.Smoothing > 0 {
		l.smoother = NewSmoother(opts.Smoothing)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

// Run starts the capturer and processes windows until the context is
// cancelled or the capturer reports io.EOF. Once Run returns no further
// calls reach the detector, mapper or sink.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.capturer.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	defer func() {
		if err := l.capturer.Stop(); err != nil && !errors.Is(err, audio.ErrNotCapturing) {
			l.logger.Warn("stop capture", "err", err)
		}
	}()

	var tick <-chan time.Time
	if l.interval > 0 {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
		if ctx.Err() != nil {
			return nil
		}

		if done := l.step(); done {
			l.logger.Info("capture finished")
			return nil
		}
	}
}

// step runs one cycle and reports whether the capturer is exhausted
func (l *Loop) step() bool {
	buffer, err := l.capturer.GetBuffer()
	if errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		l.logger.Debug("buffer unavailable", "err", err)
		return false
	}

	rms, db := buffer.Level()
	l.sink.Level(rms, db)

	estimate, err := l.detector.Estimate(buffer)
	if err != nil {
		// Typically the microphone has not delivered a window yet
		l.logger.Debug("skipping buffer", "err", err, "samples", len(buffer.Samples))
		return false
	}

	if !estimate.Detected() {
		if l.smoother != nil {
			l.smoother.Reset()
		}
		l.sink.Clear()
		return false
	}

	frequency := estimate.Frequency
	if l.smoother != nil {
		frequency = l.smoother.Add(frequency)
	}

	note := l.mapper.Map(frequency)
	if !note.Known() {
		l.sink.Clear()
		return false
	}

	l.logger.Debug("note detected",
		"note", note.String(),
		"frequency", frequency,
		"confidence", estimate.Confidence,
	)
	l.sink.Show(Reading{Note: note, Estimate: estimate})
	return false
}

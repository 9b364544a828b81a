package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/0xlemi/notefinder/internal/pitch"
	"github.com/0xlemi/notefinder/internal/tuner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
)

// options holds every command line setting
type options struct {
	// Audio settings
	window        int
	sampleRate    int
	hop           int
	amplification float64

	// Detection settings
	method     string
	policy     string
	silence    float64
	confidence float64
	minFreq    float64
	maxFreq    float64
	smooth     bool
	interval   time.Duration

	// Output settings
	plain   bool
	logFile string
	debug   bool
}

func (o *options) bind(flags *pflag.FlagSet) {
	defaults := pitch.DefaultConfig()

	flags.IntVar(&o.window, "window", 2048, "analysis window in samples")
	flags.IntVar(&o.sampleRate, "sample-rate", 44100, "microphone sample rate in Hz")
	flags.IntVar(&o.hop, "hop", 0, "samples to advance per file window (0 = half a window)")
	flags.Float64Var(&o.amplification, "amplification", 5.0, "microphone gain")

	flags.StringVar(&o.method, "method", string(pitch.MethodAutocorrelation), "detection method: autocorr or spectral")
	flags.StringVar(&o.policy, "policy", string(pitch.PolicyLog), "note mapping policy: log or fold")
	flags.Float64Var(&o.silence, "silence", defaults.SilenceRMS, "RMS below which input counts as silence")
	flags.Float64Var(&o.confidence, "confidence", defaults.MinConfidence, "minimum normalized correlation")
	flags.Float64Var(&o.minFreq, "min-freq", 0, "lowest detectable frequency in Hz (0 = fixed lag window)")
	flags.Float64Var(&o.maxFreq, "max-freq", 0, "highest detectable frequency in Hz (0 = fixed lag window)")
	flags.BoolVar(&o.smooth, "smooth", false, fmt.Sprintf("average the last %d estimates", tuner.DefaultSmoothing))
	flags.DurationVar(&o.interval, "interval", 50*time.Millisecond, "time between analysis cycles")

	flags.BoolVar(&o.plain, "plain", false, "print notes as text instead of the terminal UI")
	flags.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	flags.BoolVar(&o.debug, "debug", false, "enable debug logging")
}

func (o *options) validate() error {
	if o.window <= 0 {
		return errors.New("--window must be positive")
	}
	if o.sampleRate <= 0 {
		return errors.New("--sample-rate must be positive")
	}
	if o.hop < 0 {
		return errors.New("--hop must not be negative")
	}
	if o.interval < 0 {
		return errors.New("--interval must not be negative")
	}
	if o.amplification <= 0 {
		return errors.New("--amplification must be positive")
	}
	if _, err := pitch.NewMapper(pitch.Policy(o.policy)); err != nil {
		return err
	}
	if _, err := pitch.NewDetector(pitch.Method(o.method), o.detectorConfig()); err != nil {
		return err
	}
	return nil
}

// validateListen rejects settings that only make sense for files. The
// microphone delivers a new window per callback, so cycles need a cadence.
func (o *options) validateListen() error {
	if o.interval <= 0 {
		return errors.New("--interval must be positive when listening to the microphone")
	}
	return nil
}

func (o *options) detectorConfig() pitch.Config {
	cfg := pitch.DefaultConfig()
	cfg.SilenceRMS = o.silence
	cfg.MinConfidence = o.confidence
	cfg.MinFrequency = o.minFreq
	cfg.MaxFrequency = o.maxFreq
	return cfg
}

func (o *options) smoothing() int {
	if o.smooth {
		return tuner.DefaultSmoothing
	}
	return 0
}

// newLogger builds the process logger. The terminal UI owns stdout, so
// logs go to --log-file or nowhere unless output is plain.
func (o *options) newLogger() (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	closeLog := func() {}
	switch {
	case o.logFile != "":
		f, err := tea.LogToFile(o.logFile, "notefinder")
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	case o.plain:
		w = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: o.debug,
	}))
	return logger, closeLog, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/0xlemi/notefinder/internal/audio"
	"github.com/0xlemi/notefinder/internal/pitch"
	"github.com/0xlemi/notefinder/internal/tuner"
	"github.com/0xlemi/notefinder/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "notefinder",
		Short: "Detect the musical note of a microphone or audio file",
		Long: "NoteFinder estimates the fundamental frequency of short audio windows\n" +
			"and shows the nearest equal-tempered note. Without a subcommand it\n" +
			"listens to the default microphone.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(cmd, opts)
		},
	}
	opts.bind(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "listen",
			Short: "Detect notes from the default microphone",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runListen(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "file <path>",
			Short: "Detect notes in a WAV or MP3 file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFile(cmd, opts, args[0])
			},
		},
	)

	return root
}

func runListen(cmd *cobra.Command, opts *options) error {
	if err := opts.validateListen(); err != nil {
		return err
	}
	capturer, err := audio.NewPortAudioCapturer(opts.window, opts.sampleRate, 1)
	if err != nil {
		return fmt.Errorf("create audio capturer: %w", err)
	}
	capturer.SetAmplification(opts.amplification)

	if opts.plain {
		fmt.Fprintln(cmd.OutOrStdout(), "Listening for musical notes...")
	}
	return run(cmd, opts, capturer, "microphone", opts.interval, false)
}

func runFile(cmd *cobra.Command, opts *options, path string) error {
	capturer, err := audio.OpenFile(path, opts.window, opts.hop)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	// Plain output analyzes as fast as possible, the UI follows playback speed
	interval := opts.interval
	if !cmd.Flags().Changed("interval") {
		interval = 0
		if !opts.plain {
			interval = time.Duration(float64(time.Second) * float64(capturer.Hop()) / float64(capturer.SampleRate()))
		}
	}

	return run(cmd, opts, capturer, filepath.Base(path), interval, true)
}

func run(cmd *cobra.Command, opts *options, capturer audio.Capturer, source string, interval time.Duration, finite bool) error {
	logger, closeLog, err := opts.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	detector, err := pitch.NewDetector(pitch.Method(opts.method), opts.detectorConfig())
	if err != nil {
		return err
	}
	mapper, err := pitch.NewMapper(pitch.Policy(opts.policy))
	if err != nil {
		return err
	}

	logger.Info("starting",
		"source", source,
		"method", opts.method,
		"policy", opts.policy,
		"window", opts.window,
		"interval", interval,
		"smoothing", opts.smoothing(),
	)

	loopOpts := tuner.Options{
		Interval:  interval,
		Smoothing: opts.smoothing(),
		Logger:    logger,
	}

	if opts.plain {
		sink := tuner.NewWriterSink(cmd.OutOrStdout())
		return tuner.NewLoop(capturer, detector, mapper, sink, loopOpts).Run(cmd.Context())
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()

	p := tea.NewProgram(ui.NewModel(source), tea.WithAltScreen(), tea.WithContext(ctx))
	sink := ui.NewProgramSink(p)
	loop := tuner.NewLoop(capturer, detector, mapper, sink, loopOpts)

	g.Go(func() error {
		if err := loop.Run(loopCtx); err != nil {
			return err
		}
		if finite && loopCtx.Err() == nil {
			sink.Done()
		}
		return nil
	})

	g.Go(func() error {
		// Quitting the UI stops the loop
		defer stopLoop()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
			return nil
		}
		return err
	})

	return g.Wait()
}

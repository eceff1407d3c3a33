// Command ircab runs program material through the impulse-response pipeline.
//
// Usage:
//
//	ircab [flags]
//
// Input is a WAV or MP3 file (-in) or a generated test signal (-signal).
// Output goes to a WAV file (-out) or, without -out, to the default audio
// device. The IR comes from -ir, IRCAB_IR_PATH or the compiled-in default.
// Environment variables (IRCAB_*) provide defaults that flags override.
//
// While running, SIGHUP reloads the IR and SIGUSR1 toggles the filter.
//
// Examples:
//
//	ircab -in guitar.wav -out cab.wav
//	ircab -signal sweep -duration 5 -out sweep.wav
//	ircab -in riff.mp3 -ir 4x12.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/ircab/dsp/ir"
	dspsignal "github.com/cwbudde/ircab/dsp/signal"
	"github.com/cwbudde/ircab/engine"
	"github.com/cwbudde/ircab/internal/audiofile"
	"github.com/cwbudde/ircab/internal/config"
	"github.com/cwbudde/ircab/internal/host"
	"github.com/cwbudde/ircab/internal/logging"
	"github.com/cwbudde/ircab/resources"
)

type options struct {
	in       string
	out      string
	bits     int
	kind     string
	freq     float64
	amp      float64
	duration float64
	realtime bool
	bypass   bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	var opts options
	fs := flag.NewFlagSet("ircab", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "input WAV or MP3 file (default: generated signal)")
	fs.StringVar(&opts.out, "out", "", "output WAV file (default: play on the audio device)")
	fs.IntVar(&opts.bits, "bits", 24, "output WAV bit depth (16 or 24)")
	fs.StringVar(&opts.kind, "signal", "sweep", "generated signal: sine, noise, impulse, sweep, silence")
	fs.Float64Var(&opts.freq, "freq", 110, "sine frequency or sweep start in Hz")
	fs.Float64Var(&opts.amp, "amp", 0.5, "generated signal amplitude")
	fs.Float64Var(&opts.duration, "duration", 3, "generated signal length in seconds")
	fs.BoolVar(&opts.realtime, "realtime", false, "pace blocks at the sample rate")
	fs.BoolVar(&opts.bypass, "bypass", false, "start with the filter disabled")
	fs.StringVar(&cfg.IRPath, "ir", cfg.IRPath, "impulse response WAV (default: built-in)")
	fs.Float64Var(&cfg.SampleRate, "rate", cfg.SampleRate, "engine sample rate in Hz")
	fs.IntVar(&cfg.BlockSize, "block", cfg.BlockSize, "frames per tick")
	fs.IntVar(&cfg.OutputChannels, "channels", cfg.OutputChannels, "output channel count")
	fs.Float64Var(&cfg.InputGainDB, "gain", cfg.InputGainDB, "input gain in dB")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "convolution engine: auto, direct, partitioned")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.bypass {
		cfg.FilterEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 2
	}

	logger := logging.NewWithWriter(stderr, cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting ircab",
		"sample_rate", cfg.SampleRate,
		"block_size", cfg.BlockSize,
		"channels", cfg.OutputChannels,
		"engine", cfg.Engine,
		"filter_enabled", cfg.FilterEnabled,
	)

	eng, err := engine.New(cfg.Processor(),
		engine.WithLogger(logger),
		engine.WithSource(irSource(cfg.IRPath)),
		engine.WithFilterOptions(cfg.FilterOptions()...),
	)
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		return 1
	}
	if err := eng.Reload(); err != nil {
		logger.Warn("continuing without impulse response")
	}

	src, closeSrc, err := openSource(opts, cfg.SampleRate)
	if err != nil {
		logger.Error("failed to open input", "error", err)
		return 1
	}
	defer closeSrc()

	sink, err := openSink(opts, int(cfg.SampleRate), cfg.OutputChannels)
	if err != nil {
		logger.Error("failed to open output", "error", err)
		return 1
	}

	driverOpts := []host.Option{
		host.WithLogger(logger),
		host.WithTail(tailBlocks(eng.Active(), cfg.BlockSize)),
	}
	if opts.realtime {
		driverOpts = append(driverOpts, host.WithRealtime(cfg.SampleRate))
	}

	driver, err := host.NewDriver(eng, src, sink, cfg.BlockSize, cfg.OutputChannels, driverOpts...)
	if err != nil {
		sink.Close()
		logger.Error("failed to create driver", "error", err)
		return 1
	}

	stopControl := handleControlSignals(ctx, eng, logger)
	defer stopControl()

	start := time.Now()
	stats, runErr := driver.Run(ctx)
	closeErr := sink.Close()

	logger.Info("render finished",
		"blocks", stats.Blocks,
		"frames", stats.Frames,
		"late", stats.Late,
		"elapsed", time.Since(start),
	)

	switch {
	case runErr != nil && !errors.Is(runErr, context.Canceled):
		logger.Error("render failed", "error", runErr)
		return 1
	case closeErr != nil:
		logger.Error("failed to close output", "error", closeErr)
		return 1
	}
	return 0
}

func irSource(path string) engine.Source {
	if path == "" {
		return func() ([]byte, error) { return resources.DefaultIR, nil }
	}
	return func() ([]byte, error) { return os.ReadFile(path) }
}

func openSource(opts options, rate float64) (host.Source, func(), error) {
	if opts.in == "" {
		kind, err := dspsignal.ParseKind(opts.kind)
		if err != nil {
			return nil, nil, err
		}
		src, err := audiofile.Generate(kind, opts.freq, opts.amp, opts.duration, rate)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	f, err := audiofile.Open(opts.in)
	if err != nil {
		return nil, nil, err
	}
	src, err := audiofile.NewResampled(f, rate)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return src, func() { f.Close() }, nil
}

func openSink(opts options, rate, channels int) (audiofile.WriteCloser, error) {
	if opts.out == "" {
		p, err := audiofile.OpenPlayback(rate, channels)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	w, err := audiofile.CreateWAV(opts.out, rate, opts.bits, channels)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// tailBlocks is the number of silent blocks needed to flush the filter.
func tailBlocks(h *ir.ImpulseResponse, blockSize int) int {
	if h == nil {
		return 0
	}
	return (h.KernelLen() + blockSize - 1) / blockSize
}

func logFilterState(logger *slog.Logger, enabled bool) {
	logger.Info("filter toggled", "enabled", enabled)
}

// Package host simulates the audio interrupt: it pulls mono input blocks from
// a Source, calls the render callback once per tick and hands the rendered
// channels to a Sink.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/ircab/internal/logging"
)

// Renderer is the per-tick render callback.
type Renderer interface {
	Render(out, in [][]float32)
}

// Source produces mono input samples. Read fills block and returns the number
// of samples written; it returns io.EOF once the input is exhausted.
type Source interface {
	Read(block []float32) (int, error)
}

// Sink consumes rendered blocks, one slice per channel.
type Sink interface {
	Write(block [][]float32) error
}

// Stats summarizes a Run.
type Stats struct {
	Blocks int
	Frames int64
	// Late counts ticks whose render and I/O took longer than the tick
	// interval. Always zero in offline mode.
	Late int
}

// Option configures a Driver.
type Option func(*Driver)

// WithInterval paces ticks with a ticker. Zero renders as fast as possible
// (offline mode).
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) {
		if d >= 0 {
			dr.interval = d
		}
	}
}

// WithRealtime paces ticks at the rate implied by the block size and sample
// rate.
func WithRealtime(sampleRate float64) Option {
	return func(dr *Driver) {
		if sampleRate > 0 {
			dr.interval = time.Duration(float64(dr.blockSize) / sampleRate * float64(time.Second))
		}
	}
}

// WithTail renders extra silent blocks after the source is exhausted so the
// filter tail reaches the sink.
func WithTail(blocks int) Option {
	return func(dr *Driver) {
		if blocks >= 0 {
			dr.tail = blocks
		}
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(dr *Driver) {
		if logger != nil {
			dr.logger = logger
		}
	}
}

// Driver runs the tick loop.
type Driver struct {
	renderer Renderer
	source   Source
	sink     Sink

	blockSize int
	channels  int
	interval  time.Duration
	tail      int
	logger    *slog.Logger

	in  [][]float32
	out [][]float32
}

// NewDriver returns a driver rendering blocks of blockSize frames into
// channels output channels.
func NewDriver(r Renderer, src Source, sink Sink, blockSize, channels int, opts ...Option) (*Driver, error) {
	if r == nil || src == nil || sink == nil {
		return nil, errors.New("host: renderer, source and sink are required")
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("host: invalid block size %d", blockSize)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("host: invalid channel count %d", channels)
	}

	d := &Driver{
		renderer:  r,
		source:    src,
		sink:      sink,
		blockSize: blockSize,
		channels:  channels,
		logger:    logging.Discard(),
		in:        [][]float32{make([]float32, blockSize)},
		out:       make([][]float32, channels),
	}
	for c := range d.out {
		d.out[c] = make([]float32, blockSize)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d, nil
}

// Interval returns the tick interval; zero means offline mode.
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Run ticks until the source is exhausted (plus the configured tail), ctx is
// cancelled, or source or sink fail. Source exhaustion is not an error.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	var ticks <-chan time.Time
	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	d.logger.Debug("host driver starting",
		"block_size", d.blockSize,
		"channels", d.channels,
		"interval", d.interval,
	)

	exhausted := false
	tail := d.tail

	for {
		if ticks != nil {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-ticks:
			}
		} else if err := ctx.Err(); err != nil {
			return stats, err
		}

		start := time.Now()

		n := 0
		if !exhausted {
			var err error
			n, err = d.source.Read(d.in[0])
			switch {
			case errors.Is(err, io.EOF):
				exhausted = true
			case err != nil:
				return stats, fmt.Errorf("host: read source: %w", err)
			}
		}
		if exhausted && n == 0 {
			if tail == 0 {
				d.logger.Debug("host driver finished", "blocks", stats.Blocks, "late", stats.Late)
				return stats, nil
			}
			tail--
		}
		clear(d.in[0][n:])

		d.renderer.Render(d.out, d.in)

		if err := d.sink.Write(d.out); err != nil {
			return stats, fmt.Errorf("host: write sink: %w", err)
		}

		stats.Blocks++
		stats.Frames += int64(d.blockSize)
		if d.interval > 0 && time.Since(start) > d.interval {
			stats.Late++
		}
	}
}

// Package engine ties the IR slots and the block pipeline into one context
// object: the control path loads impulse responses into it, the render path
// calls Render once per tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwbudde/ircab/dsp/core"
	"github.com/cwbudde/ircab/dsp/ir"
	"github.com/cwbudde/ircab/dsp/pipeline"
	"github.com/cwbudde/ircab/dsp/wav"
	"github.com/cwbudde/ircab/internal/logging"
)

// ErrNoSource is returned by Reload when the engine has no IR source.
var ErrNoSource = errors.New("engine: no IR source configured")

// Source returns the bytes of an IR WAV file.
type Source func() ([]byte, error)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the control-path logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSource sets the IR source used by Reload.
func WithSource(src Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithFilterOptions sets the options used to build every IR filter.
func WithFilterOptions(opts ...ir.Option) Option {
	return func(e *Engine) {
		e.filterOpts = opts
	}
}

// Engine owns the processor configuration, the IR slots and the pipeline.
type Engine struct {
	cfg        core.ProcessorConfig
	logger     *slog.Logger
	source     Source
	filterOpts []ir.Option

	// mu serializes loads so stage and promote happen as a pair.
	mu sync.Mutex

	slots    *ir.Slots
	pipeline *pipeline.Pipeline
}

// New allocates an engine for cfg. It fails when cfg is unusable; the engine
// starts without an active IR and passes audio through until Load succeeds.
func New(cfg core.ProcessorConfig, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.slots = ir.NewSlots(cfg.SampleRate, cfg.BlockSize, e.filterOpts...)

	p, err := pipeline.New(e.slots, cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.pipeline = p

	return e, nil
}

// Load decodes blob, builds a filter from it and makes it active. On failure
// the previously active filter stays in effect and the error is returned.
func (e *Engine) Load(blob []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	if err := e.slots.StageWAV(blob); err != nil {
		e.logger.Warn("impulse response load failed",
			"status", wav.StatusOf(err).String(),
			"error", err,
		)
		return err
	}
	e.slots.Promote()

	h := e.slots.Active()
	e.logger.Info("impulse response loaded",
		"status", wav.StatusSuccess.String(),
		"taps", h.KernelLen(),
		"engine", h.Engine().String(),
		"ir_sample_rate", h.Data().SampleRate,
		"sample_rate", h.SampleRate(),
		"elapsed", time.Since(start),
	)

	return nil
}

// Reload fetches the IR from the configured source and loads it.
func (e *Engine) Reload() error {
	if e.source == nil {
		return ErrNoSource
	}

	blob, err := e.source()
	if err != nil {
		e.logger.Warn("impulse response source failed", "error", err)
		return fmt.Errorf("engine: read IR: %w", err)
	}

	return e.Load(blob)
}

// Unload drops the active filter; audio passes through afterwards.
func (e *Engine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.slots.Clear()
	e.logger.Info("impulse response unloaded")
}

// Render processes one block. It is the render callback and must be called
// from a single goroutine.
func (e *Engine) Render(out, in [][]float32) {
	e.pipeline.Process(out, in)
}

// RenderMono is Render for single-channel float64 hosts.
func (e *Engine) RenderMono(dst, src []float64) {
	e.pipeline.ProcessMono(dst, src)
}

// SetInputGainDB sets the input gain in decibels.
func (e *Engine) SetInputGainDB(db float64) {
	e.pipeline.SetInputGain(core.DBToLinear(db))
}

// InputGainDB returns the input gain in decibels.
func (e *Engine) InputGainDB() float64 {
	return core.LinearToDB(e.pipeline.InputGain())
}

// SetFilterEnabled switches the IR filter on or off.
func (e *Engine) SetFilterEnabled(enabled bool) {
	e.pipeline.SetFilterEnabled(enabled)
}

// ToggleFilter flips the filter state and returns the new state.
func (e *Engine) ToggleFilter() bool {
	enabled := !e.pipeline.FilterEnabled()
	e.pipeline.SetFilterEnabled(enabled)
	return enabled
}

// FilterEnabled reports whether the IR filter is applied.
func (e *Engine) FilterEnabled() bool {
	return e.pipeline.FilterEnabled()
}

// Active returns the active filter, or nil when none is loaded.
func (e *Engine) Active() *ir.ImpulseResponse {
	return e.slots.Active()
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() core.ProcessorConfig {
	return e.cfg
}

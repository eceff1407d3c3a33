// Package pipeline renders fixed-size audio blocks through the IR filter.
//
// Each tick the pipeline scales the mono input by the input gain, runs it
// through the active impulse response when filtering is enabled, clips the
// result to [-1, 1] and writes it to every output channel. Process never
// allocates, never locks and never blocks.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/ircab/dsp/core"
	"github.com/cwbudde/ircab/dsp/ir"
)

// ErrBlockSizeMismatch is returned by New when the slots build filters for a
// different block size than the pipeline renders.
var ErrBlockSizeMismatch = errors.New("pipeline: slots block size mismatch")

// Pipeline is the per-tick block processor.
//
// Process and ProcessMono must be called from a single render goroutine. The
// gain and filter setters may be called concurrently from any goroutine.
type Pipeline struct {
	slots     *ir.Slots
	blockSize int

	gain   atomic.Uint64 // math.Float64bits of the linear input gain
	filter atomic.Bool

	input  []float64
	output []float64
}

// New allocates the block buffers for cfg. slots may be nil, in which case
// the pipeline always passes the input through.
func New(slots *ir.Slots, cfg core.ProcessorConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if slots != nil && slots.BlockSize() != cfg.BlockSize {
		return nil, fmt.Errorf("%w: slots %d, pipeline %d", ErrBlockSizeMismatch, slots.BlockSize(), cfg.BlockSize)
	}

	p := &Pipeline{
		slots:     slots,
		blockSize: cfg.BlockSize,
		input:     make([]float64, cfg.BlockSize),
		output:    make([]float64, cfg.BlockSize),
	}
	p.SetInputGain(cfg.InputGain)
	p.SetFilterEnabled(cfg.FilterEnabled)

	return p, nil
}

// BlockSize returns the number of frames rendered per tick.
func (p *Pipeline) BlockSize() int {
	return p.blockSize
}

// SetInputGain sets the linear input gain.
func (p *Pipeline) SetInputGain(gain float64) {
	p.gain.Store(math.Float64bits(gain))
}

// InputGain returns the linear input gain.
func (p *Pipeline) InputGain() float64 {
	return math.Float64frombits(p.gain.Load())
}

// SetFilterEnabled switches the IR filter on or off.
func (p *Pipeline) SetFilterEnabled(enabled bool) {
	p.filter.Store(enabled)
}

// FilterEnabled reports whether the IR filter is applied.
func (p *Pipeline) FilterEnabled() bool {
	return p.filter.Load()
}

// Process renders one block. Channel 0 of in is the mono source; the result
// is written to every channel of out.
//
// Input shorter than the block size is padded with silence. Output channels
// receive at most BlockSize samples; any remaining samples are zeroed.
func (p *Pipeline) Process(out, in [][]float32) {
	gain := p.InputGain()

	var src []float32
	if len(in) > 0 {
		src = in[0]
	}
	n := min(len(src), p.blockSize)
	for i := range n {
		p.input[i] = gain * float64(src[i])
	}
	clear(p.input[n:])

	p.render()

	for _, ch := range out {
		m := min(len(ch), p.blockSize)
		for i := range m {
			ch[i] = float32(p.output[i])
		}
		clear(ch[m:])
	}
}

// ProcessMono renders one block from src to dst with the same rules as
// Process.
func (p *Pipeline) ProcessMono(dst, src []float64) {
	gain := p.InputGain()

	n := min(len(src), p.blockSize)
	for i := range n {
		p.input[i] = gain * src[i]
	}
	clear(p.input[n:])

	p.render()

	m := copy(dst, p.output)
	clear(dst[m:])
}

// render fills p.output from p.input.
func (p *Pipeline) render() {
	copy(p.output, p.input)

	if p.slots != nil && p.FilterEnabled() {
		if h := p.slots.Active(); h != nil {
			if err := h.ProcessBlock(p.output, p.input); err != nil {
				copy(p.output, p.input)
			}
		}
	}

	for i, v := range p.output {
		p.output[i] = clip(v)
	}
}

// clip limits v to [-1, 1]; NaN becomes silence.
func clip(v float64) float64 {
	if v != v {
		return 0
	}
	return core.Clamp(v, -1, 1)
}

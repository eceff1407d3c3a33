package ir

import (
	"fmt"

	"github.com/cwbudde/ircab/dsp/resample"
)

// Engine selects the convolution algorithm of an ImpulseResponse.
type Engine int

const (
	// EngineAuto picks EngineDirect for kernels of up to
	// conv.DirectThreshold taps and EnginePartitioned otherwise.
	EngineAuto Engine = iota
	// EngineDirect convolves in the time domain.
	EngineDirect
	// EnginePartitioned uses uniformly partitioned FFT convolution.
	EnginePartitioned
)

// String returns the engine name.
func (e Engine) String() string {
	switch e {
	case EngineAuto:
		return "auto"
	case EngineDirect:
		return "direct"
	case EnginePartitioned:
		return "partitioned"
	default:
		return fmt.Sprintf("engine(%d)", int(e))
	}
}

// ParseEngine converts an engine name to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch s {
	case "", "auto":
		return EngineAuto, nil
	case "direct":
		return EngineDirect, nil
	case "partitioned", "fft":
		return EnginePartitioned, nil
	}
	return EngineAuto, fmt.Errorf("ir: unknown engine %q", s)
}

type options struct {
	engine  Engine
	quality resample.Quality
}

// Option configures filter construction.
type Option func(*options)

// WithEngine selects the convolution engine.
func WithEngine(e Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithResampleQuality selects the quality of the kernel rate conversion.
func WithResampleQuality(q resample.Quality) Option {
	return func(o *options) {
		o.quality = q
	}
}

func applyOptions(opts []Option) options {
	o := options{
		engine:  EngineAuto,
		quality: resample.QualityBest,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

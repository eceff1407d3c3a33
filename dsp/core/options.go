package core

import (
	"errors"
	"fmt"
	"math"
)

// Limits enforced by ProcessorConfig.Validate.
const (
	MaxBlockSize      = 8192
	MaxOutputChannels = 32
)

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("core: invalid processor config")

// ProcessorConfig defines the settings of the block processor.
type ProcessorConfig struct {
	// SampleRate is the engine's operating rate in Hz.
	SampleRate float64

	// BlockSize is the number of frames rendered per tick.
	BlockSize int

	// InputGain is the linear gain applied to the mono input.
	InputGain float64

	// FilterEnabled selects whether the active IR is applied.
	FilterEnabled bool

	// OutputChannels is the number of channels every output sample is
	// written to.
	OutputChannels int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the defaults of a 48 kHz stereo-out pedal
// running four-frame blocks with the filter enabled at unity gain.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:     48000,
		BlockSize:      4,
		InputGain:      1,
		FilterEnabled:  true,
		OutputChannels: 2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithInputGain sets the linear input gain.
func WithInputGain(gain float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if gain >= 0 && !math.IsInf(gain, 0) {
			cfg.InputGain = gain
		}
	}
}

// WithInputGainDB sets the input gain in decibels.
func WithInputGainDB(db float64) ProcessorOption {
	return WithInputGain(DBToLinear(db))
}

// WithFilterEnabled sets whether the IR filter is applied.
func WithFilterEnabled(enabled bool) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.FilterEnabled = enabled
	}
}

// WithOutputChannels sets the number of output channels.
func WithOutputChannels(n int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if n > 0 {
			cfg.OutputChannels = n
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports the first unusable setting, wrapped in ErrInvalidConfig.
func (c ProcessorConfig) Validate() error {
	switch {
	case !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0):
		return fmt.Errorf("%w: sample rate %v", ErrInvalidConfig, c.SampleRate)
	case c.BlockSize <= 0 || c.BlockSize > MaxBlockSize:
		return fmt.Errorf("%w: block size %d not in [1, %d]", ErrInvalidConfig, c.BlockSize, MaxBlockSize)
	case !(c.InputGain >= 0) || math.IsInf(c.InputGain, 0):
		return fmt.Errorf("%w: input gain %v", ErrInvalidConfig, c.InputGain)
	case c.OutputChannels <= 0 || c.OutputChannels > MaxOutputChannels:
		return fmt.Errorf("%w: output channels %d not in [1, %d]", ErrInvalidConfig, c.OutputChannels, MaxOutputChannels)
	}
	return nil
}

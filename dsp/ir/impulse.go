package ir

import (
	"fmt"
	"math"

	"github.com/cwbudde/ircab/dsp/conv"
	"github.com/cwbudde/ircab/dsp/resample"
	"github.com/cwbudde/ircab/dsp/wav"
)

// MaxKernelLength is the maximum number of kernel taps after rate conversion.
const MaxKernelLength = 8192

// resampleMargin is the number of raw samples kept past the truncation point
// so the converter's filter support is complete at the last kept tap.
const resampleMargin = 128

// IRData is the raw audio a filter was built from.
type IRData struct {
	Samples    []float32
	SampleRate float64
}

// ImpulseResponse is a convolution filter with a fixed kernel.
//
// Construction and the accessors may be used from any goroutine. ProcessBlock
// and Reset mutate the convolution state and must only be called from one
// goroutine at a time, normally the render goroutine.
type ImpulseResponse struct {
	data       IRData
	sampleRate float64
	blockSize  int
	opts       options

	kernel []float64
	engine Engine
	conv   conv.StreamingConvolver
}

// New builds a filter from decoded audio for an engine running at sampleRate
// with blocks of blockSize frames.
func New(raw wav.Audio, sampleRate float64, blockSize int, opts ...Option) (*ImpulseResponse, error) {
	return newImpulseResponse(IRData{Samples: raw.Samples, SampleRate: raw.SampleRate}, sampleRate, blockSize, applyOptions(opts))
}

// FromWAV decodes a WAV blob and builds a filter from it. Decode failures are
// returned wrapped and match the wav package sentinels with errors.Is.
func FromWAV(data []byte, sampleRate float64, blockSize int, opts ...Option) (*ImpulseResponse, error) {
	raw, err := wav.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("ir: decode: %w", err)
	}
	return New(raw, sampleRate, blockSize, opts...)
}

func newImpulseResponse(data IRData, sampleRate float64, blockSize int, o options) (*ImpulseResponse, error) {
	if len(data.Samples) == 0 {
		return nil, ErrEmptyIR
	}
	if !validRate(sampleRate) {
		return nil, fmt.Errorf("%w: engine rate %v", ErrInvalidSampleRate, sampleRate)
	}
	if !validRate(data.SampleRate) {
		return nil, fmt.Errorf("%w: IR rate %v", ErrInvalidSampleRate, data.SampleRate)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}

	samples := append([]float32(nil), data.Samples...)

	kernel, err := buildKernel(samples, data.SampleRate, sampleRate, o.quality)
	if err != nil {
		return nil, err
	}

	engine := o.engine
	if engine == EngineAuto {
		engine = EnginePartitioned
		if len(kernel) <= conv.DirectThreshold {
			engine = EngineDirect
		}
	}

	var c conv.StreamingConvolver
	switch engine {
	case EngineDirect:
		c, err = conv.NewStreamingDirect(kernel, blockSize)
	case EnginePartitioned:
		c, err = conv.NewUniformPartitioned(kernel, blockSize)
	default:
		err = fmt.Errorf("ir: unknown engine %v", engine)
	}
	if err != nil {
		return nil, fmt.Errorf("ir: build %s engine: %w", engine, err)
	}

	return &ImpulseResponse{
		data:       IRData{Samples: samples, SampleRate: data.SampleRate},
		sampleRate: sampleRate,
		blockSize:  blockSize,
		opts:       o,
		kernel:     kernel,
		engine:     engine,
		conv:       c,
	}, nil
}

// buildKernel converts samples from rawRate to rate and truncates the result
// to MaxKernelLength taps.
func buildKernel(samples []float32, rawRate, rate float64, q resample.Quality) ([]float64, error) {
	n := len(samples)
	if !resample.SameRate(rawRate, rate) {
		// Only the head of a long recording survives truncation.
		need := int(math.Ceil(MaxKernelLength*rawRate/rate)) + resampleMargin
		n = min(n, need)
	} else {
		n = min(n, MaxKernelLength)
	}

	x := make([]float64, n)
	for i, v := range samples[:n] {
		x[i] = float64(v)
	}

	kernel, err := resample.Kernel(x, rawRate, rate, resample.WithQuality(q))
	if err != nil {
		return nil, fmt.Errorf("ir: resample kernel: %w", err)
	}
	if len(kernel) > MaxKernelLength {
		kernel = kernel[:MaxKernelLength:MaxKernelLength]
	}
	return kernel, nil
}

// ProcessBlock writes the convolution of src with the kernel to dst.
// Both slices must hold exactly BlockSize samples; dst may alias src.
// Convolution state carries over from the previous call.
func (h *ImpulseResponse) ProcessBlock(dst, src []float64) error {
	if len(src) != h.blockSize || len(dst) != h.blockSize {
		return fmt.Errorf("%w: want %d samples, got src=%d dst=%d", ErrLengthMismatch, h.blockSize, len(src), len(dst))
	}
	return h.conv.ProcessBlockTo(dst, src)
}

// Reset clears the convolution state.
func (h *ImpulseResponse) Reset() {
	h.conv.Reset()
}

// Rebuild returns a new, independent filter built from the same raw audio
// for an engine running at sampleRate.
func (h *ImpulseResponse) Rebuild(sampleRate float64) (*ImpulseResponse, error) {
	return newImpulseResponse(h.data, sampleRate, h.blockSize, h.opts)
}

// Kernel returns a copy of the kernel taps.
func (h *ImpulseResponse) Kernel() []float64 {
	return append([]float64(nil), h.kernel...)
}

// KernelLen returns the number of kernel taps.
func (h *ImpulseResponse) KernelLen() int {
	return len(h.kernel)
}

// SampleRate returns the engine rate the kernel is expressed at.
func (h *ImpulseResponse) SampleRate() float64 {
	return h.sampleRate
}

// BlockSize returns the block size ProcessBlock expects.
func (h *ImpulseResponse) BlockSize() int {
	return h.blockSize
}

// Engine returns the convolution engine in use.
func (h *ImpulseResponse) Engine() Engine {
	return h.engine
}

// Partitions returns the number of kernel partitions of the FFT engine, or
// zero for the direct engine.
func (h *ImpulseResponse) Partitions() int {
	if p, ok := h.conv.(*conv.UniformPartitioned); ok {
		return p.Partitions()
	}
	return 0
}

// Data returns a copy of the raw audio the filter was built from.
func (h *ImpulseResponse) Data() IRData {
	return IRData{
		Samples:    append([]float32(nil), h.data.Samples...),
		SampleRate: h.data.SampleRate,
	}
}

func validRate(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

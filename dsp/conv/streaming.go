package conv

import "fmt"

// StreamingConvolver performs block-by-block convolution with persistent state.
//
// Implementations:
//   - Process fixed-size input blocks
//   - Maintain internal state for continuity between blocks
//   - Add no latency: output sample i of a block depends on input samples up
//     to and including input sample i of the same block
//   - Support zero-allocation processing via ProcessBlockTo
type StreamingConvolver interface {
	// ProcessBlock convolves a single input block and returns a new output block.
	ProcessBlock(input []float64) ([]float64, error)

	// ProcessBlockTo convolves input and writes the result to output.
	// Both must be of length BlockSize. output may alias input.
	ProcessBlockTo(output, input []float64) error

	// Reset clears internal state for processing a new signal stream.
	Reset()

	// BlockSize returns the expected input/output block size.
	BlockSize() int

	// KernelLen returns the convolution kernel length.
	KernelLen() int

	// FFTSize returns the internal FFT size, or 0 for time-domain engines.
	FFTSize() int
}

// NewStreaming returns a streaming convolver for kernel with the given block
// size. Kernels up to DirectThreshold taps use StreamingDirect; longer
// kernels use UniformPartitioned.
func NewStreaming(kernel []float64, blockSize int) (StreamingConvolver, error) {
	if len(kernel) <= DirectThreshold {
		return NewStreamingDirect(kernel, blockSize)
	}
	return NewUniformPartitioned(kernel, blockSize)
}

func checkBlock(output, input []float64, blockSize int) error {
	if len(input) != blockSize {
		return fmt.Errorf("%w: expected %d input samples, got %d", ErrLengthMismatch, blockSize, len(input))
	}
	if len(output) != blockSize {
		return fmt.Errorf("%w: expected %d output samples, got %d", ErrLengthMismatch, blockSize, len(output))
	}
	return nil
}

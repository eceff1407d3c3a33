package conv

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// StreamingDirect implements streaming time-domain convolution.
//
// The convolver keeps the last kernelLen-1 input samples in front of the
// current block, so each output sample is the dot product of a sliding input
// window with the time-reversed kernel.
type StreamingDirect struct {
	reversed []float64 // kernel, time-reversed

	kernelLen int
	blockSize int

	// window holds [history (kernelLen-1) | current block (blockSize)].
	window []float64

	// products is scratch for the element-wise window*kernel products.
	products []float64
}

// NewStreamingDirect creates a streaming direct convolver.
func NewStreamingDirect(kernel []float64, blockSize int) (*StreamingDirect, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}

	k := len(kernel)
	reversed := make([]float64, k)
	for i, v := range kernel {
		reversed[k-1-i] = v
	}

	return &StreamingDirect{
		reversed:  reversed,
		kernelLen: k,
		blockSize: blockSize,
		window:    make([]float64, k-1+blockSize),
		products:  make([]float64, k),
	}, nil
}

// ProcessBlock convolves a single block and returns the output block.
func (d *StreamingDirect) ProcessBlock(input []float64) ([]float64, error) {
	output := make([]float64, d.blockSize)
	if err := d.ProcessBlockTo(output, input); err != nil {
		return nil, err
	}
	return output, nil
}

// ProcessBlockTo convolves input and writes to pre-allocated output.
func (d *StreamingDirect) ProcessBlockTo(output, input []float64) error {
	if err := checkBlock(output, input, d.blockSize); err != nil {
		return err
	}

	hist := d.kernelLen - 1
	copy(d.window[hist:], input)

	for n := range d.blockSize {
		vecmath.MulBlock(d.products, d.window[n:n+d.kernelLen], d.reversed)

		var acc float64
		for _, p := range d.products {
			acc += p
		}
		output[n] = acc
	}

	// Keep the newest kernelLen-1 samples as history.
	copy(d.window, d.window[d.blockSize:])

	return nil
}

// Reset clears the input history.
func (d *StreamingDirect) Reset() {
	clear(d.window)
}

// BlockSize returns the block size.
func (d *StreamingDirect) BlockSize() int {
	return d.blockSize
}

// KernelLen returns the kernel length.
func (d *StreamingDirect) KernelLen() int {
	return d.kernelLen
}

// FFTSize returns 0; the direct engine does not use an FFT.
func (d *StreamingDirect) FFTSize() int {
	return 0
}

package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// UniformPartitioned implements zero-latency streaming FFT convolution with a
// uniformly partitioned kernel.
//
// The kernel is split into partitions of blockSize taps. Each partition is
// transformed once with an FFT of size 2*blockSize. Every input block is
// transformed together with the previous block (overlap-save) and pushed into
// a frequency-domain delay line (FDL). The output spectrum is the sum of each
// delayed input spectrum times its matching kernel partition; the second half
// of its inverse transform is the output block.
type UniformPartitioned struct {
	kernelLen  int
	blockSize  int
	fftSize    int
	partitions int

	plan *algofft.Plan[complex128]

	// kernelSpectra[m] is the spectrum of kernel[m*blockSize:(m+1)*blockSize].
	kernelSpectra [][]complex128

	// fdl is a ring of input spectra; fdl[head] is the newest.
	fdl  [][]complex128
	head int

	prev  []float64    // previous input block
	frame []complex128 // time-domain scratch
	acc   []complex128 // spectrum accumulator
}

// NewUniformPartitioned creates a uniformly partitioned convolver.
func NewUniformPartitioned(kernel []float64, blockSize int) (*UniformPartitioned, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}

	// A power-of-two FFT of at least twice the block size; the partition
	// length equals the block size, so the extra room stays zero padded.
	fftSize := nextPowerOf2(2 * blockSize)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	partitions := (len(kernel) + blockSize - 1) / blockSize

	up := &UniformPartitioned{
		kernelLen:     len(kernel),
		blockSize:     blockSize,
		fftSize:       fftSize,
		partitions:    partitions,
		plan:          plan,
		kernelSpectra: make([][]complex128, partitions),
		fdl:           make([][]complex128, partitions),
		prev:          make([]float64, blockSize),
		frame:         make([]complex128, fftSize),
		acc:           make([]complex128, fftSize),
	}

	for m := range partitions {
		start := m * blockSize
		end := min(start+blockSize, len(kernel))

		clear(up.frame)
		for i, v := range kernel[start:end] {
			up.frame[i] = complex(v, 0)
		}

		spec := make([]complex128, fftSize)
		if err := plan.Forward(spec, up.frame); err != nil {
			return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
		}
		up.kernelSpectra[m] = spec
		up.fdl[m] = make([]complex128, fftSize)
	}
	clear(up.frame)

	return up, nil
}

// ProcessBlock convolves a single block and returns the output block.
func (up *UniformPartitioned) ProcessBlock(input []float64) ([]float64, error) {
	output := make([]float64, up.blockSize)
	if err := up.ProcessBlockTo(output, input); err != nil {
		return nil, err
	}
	return output, nil
}

// ProcessBlockTo convolves input and writes to pre-allocated output.
func (up *UniformPartitioned) ProcessBlockTo(output, input []float64) error {
	if err := checkBlock(output, input, up.blockSize); err != nil {
		return err
	}

	// Frame: [zero padding | previous block | current block], with the
	// current block ending at fftSize.
	b := up.blockSize
	off := up.fftSize - 2*b
	clear(up.frame[:off])
	for i := range b {
		up.frame[off+i] = complex(up.prev[i], 0)
		up.frame[off+b+i] = complex(input[i], 0)
	}
	copy(up.prev, input)

	up.head++
	if up.head == up.partitions {
		up.head = 0
	}
	if err := up.plan.Forward(up.fdl[up.head], up.frame); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	clear(up.acc)
	slot := up.head
	for m := range up.partitions {
		x := up.fdl[slot]
		h := up.kernelSpectra[m]
		for k := range up.acc {
			up.acc[k] += x[k] * h[k]
		}

		slot--
		if slot < 0 {
			slot = up.partitions - 1
		}
	}

	if err := up.plan.Inverse(up.frame, up.acc); err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	tail := up.frame[up.fftSize-b:]
	for i := range b {
		output[i] = real(tail[i])
	}

	return nil
}

// Reset clears the delay line and the previous block.
func (up *UniformPartitioned) Reset() {
	for _, s := range up.fdl {
		clear(s)
	}
	clear(up.prev)
	up.head = 0
}

// BlockSize returns the block size.
func (up *UniformPartitioned) BlockSize() int {
	return up.blockSize
}

// KernelLen returns the kernel length.
func (up *UniformPartitioned) KernelLen() int {
	return up.kernelLen
}

// FFTSize returns the FFT size.
func (up *UniformPartitioned) FFTSize() int {
	return up.fftSize
}

// Partitions returns the number of kernel partitions.
func (up *UniformPartitioned) Partitions() int {
	return up.partitions
}

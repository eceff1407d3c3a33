// Package conv provides streaming block convolvers for real-time filtering.
//
// All convolvers in this package compute the linear convolution of an
// unbounded input stream with a fixed kernel,
//
//	y[n] = sum_k h[k] * x[n-k]
//
// one fixed-size block at a time and without added latency: the output block
// returned for an input block contains exactly the samples y[n] for the same
// indices n.
//
// Two engines are available:
//
//   - StreamingDirect: time-domain convolution over a rolling input history.
//     Cost per sample grows with the kernel length, which makes it the best
//     choice for short kernels.
//   - UniformPartitioned: overlap-save FFT convolution with the kernel split
//     into partitions of one block each and a frequency-domain delay line.
//     Cost per sample grows with the logarithm of the block size and the
//     number of partitions.
//
// # Usage
//
//	c, err := conv.NewStreaming(kernel, blockSize)
//	if err != nil {
//		return err
//	}
//	for block := range blocks {
//		if err := c.ProcessBlockTo(out, block); err != nil {
//			return err
//		}
//	}
//
// NewStreaming picks the direct engine for kernels up to DirectThreshold taps
// and the partitioned engine otherwise. ProcessBlockTo never allocates.
package conv

package resample

import "math"

// rateTolerance is the relative difference below which two rates are equal.
const rateTolerance = 1e-9

// SameRate reports whether a and b are equal within a relative tolerance.
func SameRate(a, b float64) bool {
	return math.Abs(a-b) <= rateTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// KernelLen returns the length Kernel produces for n input samples.
func KernelLen(n int, inRate, outRate float64) int {
	if n <= 0 {
		return 0
	}
	if SameRate(inRate, outRate) {
		return n
	}
	return int(math.Ceil(float64(n) * outRate / inRate))
}

// Kernel converts a finite signal, typically an impulse response, from
// inRate to outRate.
//
// Unlike Resampler.Process, the result is aligned with the input: the
// anti-aliasing filter's group delay (rounded to whole output samples) is
// removed and the filter tail is flushed with zeros. The result has
// KernelLen(len(samples), inRate, outRate) samples. When the rates are equal
// the input is copied unchanged.
func Kernel(samples []float64, inRate, outRate float64, opts ...Option) ([]float64, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, ErrInvalidRate
	}
	if len(samples) == 0 {
		return []float64{}, nil
	}
	if SameRate(inRate, outRate) {
		return append([]float64(nil), samples...), nil
	}

	r, err := NewForRates(inRate, outRate, opts...)
	if err != nil {
		return nil, err
	}

	outLen := KernelLen(len(samples), inRate, outRate)
	skip := int(math.Round(r.GroupDelay()))

	// Enough trailing zeros to flush skip extra outputs plus one polyphase
	// branch.
	up, down := r.Ratio()
	pad := ((skip+1)*down+up-1)/up + r.maxPhaseLn

	in := make([]float64, len(samples)+pad)
	copy(in, samples)

	y := r.Process(in)

	out := make([]float64, outLen)
	if skip < len(y) {
		copy(out, y[skip:])
	}
	return out, nil
}

package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DecayingKernel returns a reproducible IR-like kernel: noise under an
// exponential envelope that falls by 60 dB over length samples.
func DecayingKernel(seed int64, length int) []float64 {
	out := DeterministicNoise(seed, 1, length)
	if length == 0 {
		return out
	}
	k := math.Log(1000) / float64(length)
	for i := range out {
		out[i] *= math.Exp(-k * float64(i))
	}
	out[0] = 1
	return out
}

// ToFloat32 converts samples to float32.
func ToFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

// ToFloat64 converts samples to float64.
func ToFloat64(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

// DirectConvolve is the reference linear convolution y[n] = sum_k h[k]*x[n-k],
// truncated to len(x).
func DirectConvolve(x, h []float64) []float64 {
	out := make([]float64, len(x))
	for n := range out {
		var y float64
		for k := 0; k < len(h) && k <= n; k++ {
			y += h[k] * x[n-k]
		}
		out[n] = y
	}
	return out
}

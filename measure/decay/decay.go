package decay

import (
	"errors"
	"math"
)

// Errors returned by the analysis functions.
var (
	ErrEmpty             = errors.New("decay: impulse response is empty")
	ErrSilent            = errors.New("decay: impulse response has no energy")
	ErrInvalidSampleRate = errors.New("decay: sample rate must be positive")
)

// floorDB is the level assigned to samples with no remaining energy.
const floorDB = -200

// onsetRatio is the fraction of the peak magnitude that marks the onset.
const onsetRatio = 0.1

// Metrics describes the decay of an impulse response.
type Metrics struct {
	PeakIndex int     // sample index of the absolute maximum
	Onset     int     // first sample at or above -20 dB relative to the peak
	EDT       float64 // early decay time in seconds (0 to -10 dB, extrapolated)
	RT        float64 // reverberation time in seconds (T30, falling back to T20); 0 if undetermined
	Center    float64 // energy centroid in seconds, measured from the onset

	// EffectiveLength is the number of samples until the Schroeder curve
	// falls below -60 dB.
	EffectiveLength int
}

// Analyze computes the decay metrics of h sampled at sampleRate.
func Analyze[T float32 | float64](h []T, sampleRate float64) (Metrics, error) {
	if len(h) == 0 {
		return Metrics{}, ErrEmpty
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Metrics{}, ErrInvalidSampleRate
	}

	x := toFloat64(h)
	s := schroeder(x)
	if s == nil {
		return Metrics{}, ErrSilent
	}

	peak := peakIndex(x)
	onset := onsetIndex(x, x[peak])

	m := Metrics{
		PeakIndex:       peak,
		Onset:           onset,
		EDT:             reverbTime(s[peak:], 0, -10, sampleRate),
		Center:          centerTime(x[onset:], sampleRate),
		EffectiveLength: len(x),
	}

	if m.RT = reverbTime(s[peak:], -5, -35, sampleRate); m.RT == 0 {
		m.RT = reverbTime(s[peak:], -5, -25, sampleRate)
	}

	for i, v := range s {
		if v < -60 {
			m.EffectiveLength = i
			break
		}
	}

	return m, nil
}

// Schroeder returns the backward-integrated energy of h in dB relative to its
// total energy. The first element is 0 dB.
func Schroeder[T float32 | float64](h []T) ([]float64, error) {
	if len(h) == 0 {
		return nil, ErrEmpty
	}
	s := schroeder(toFloat64(h))
	if s == nil {
		return nil, ErrSilent
	}
	return s, nil
}

// TruncationLossDB returns the level, relative to the total energy, of the
// energy in h beyond the first taps samples. It is -Inf when nothing is lost.
func TruncationLossDB[T float32 | float64](h []T, taps int) (float64, error) {
	if len(h) == 0 {
		return 0, ErrEmpty
	}
	taps = max(taps, 0)

	var total, tail float64
	for i, v := range h {
		e := float64(v) * float64(v)
		total += e
		if i >= taps {
			tail += e
		}
	}
	if total <= 0 {
		return 0, ErrSilent
	}
	if tail <= 0 {
		return math.Inf(-1), nil
	}
	return 10 * math.Log10(tail/total), nil
}

func toFloat64[T float32 | float64](h []T) []float64 {
	x := make([]float64, len(h))
	for i, v := range h {
		x[i] = float64(v)
	}
	return x
}

// schroeder returns nil when h has no energy.
func schroeder(h []float64) []float64 {
	out := make([]float64, len(h))

	var cum float64
	for i := len(h) - 1; i >= 0; i-- {
		cum += h[i] * h[i]
		out[i] = cum
	}

	total := out[0]
	if total <= 0 {
		return nil
	}

	for i, v := range out {
		if v <= 0 {
			out[i] = floorDB
			continue
		}
		out[i] = 10 * math.Log10(v/total)
	}
	return out
}

// reverbTime fits a line to the Schroeder curve between startDB and endDB and
// extrapolates it to -60 dB. It returns 0 when the range is not reached or
// the curve does not fall.
func reverbTime(s []float64, startDB, endDB, sampleRate float64) float64 {
	start, end := -1, -1
	for i, v := range s {
		if start < 0 && v <= startDB {
			start = i
		}
		if start >= 0 && v <= endDB {
			end = i
			break
		}
	}
	if start < 0 || end <= start {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := start; i <= end; i++ {
		x := float64(i - start)
		sumX += x
		sumY += s[i]
		sumXX += x * x
		sumXY += x * s[i]
	}

	n := float64(end - start + 1)
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	// dB per sample
	slope := (n*sumXY - sumX*sumY) / denom
	if slope >= 0 {
		return 0
	}
	return -60 / (slope * sampleRate)
}

func centerTime(h []float64, sampleRate float64) float64 {
	var num, den float64
	for i, v := range h {
		e := v * v
		num += float64(i) / sampleRate * e
		den += e
	}
	if den <= 0 {
		return 0
	}
	return num / den
}

func peakIndex(h []float64) int {
	idx, peak := 0, 0.0
	for i, v := range h {
		if av := math.Abs(v); av > peak {
			idx, peak = i, av
		}
	}
	return idx
}

func onsetIndex(h []float64, peak float64) int {
	threshold := math.Abs(peak) * onsetRatio
	for i, v := range h {
		if math.Abs(v) >= threshold {
			return i
		}
	}
	return 0
}

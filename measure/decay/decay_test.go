package decay

import (
	"errors"
	"math"
	"testing"
)

// exponentialDecay returns delay zeros followed by exp(-ln(1000) t / rt60),
// which falls by 60 dB in rt60 seconds.
func exponentialDecay(sampleRate, rt60, seconds float64, delay int) []float64 {
	n := int(sampleRate * seconds)
	h := make([]float64, delay+n)
	rate := math.Log(1000) / rt60
	for i := range n {
		h[delay+i] = math.Exp(-rate * float64(i) / sampleRate)
	}
	return h
}

func TestAnalyzeExponentialDecay(t *testing.T) {
	const fs = 48000.0
	h := exponentialDecay(fs, 0.2, 0.6, 96)

	m, err := Analyze(h, fs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if m.PeakIndex != 96 || m.Onset != 96 {
		t.Fatalf("PeakIndex = %d, Onset = %d, want 96", m.PeakIndex, m.Onset)
	}
	if math.Abs(m.RT-0.2) > 0.01 {
		t.Fatalf("RT = %.4f, want 0.2", m.RT)
	}
	if math.Abs(m.EDT-0.2) > 0.01 {
		t.Fatalf("EDT = %.4f, want 0.2", m.EDT)
	}
	// The Schroeder curve of an exponential follows its envelope, so -60 dB
	// lies about rt60 after the pre-delay.
	if m.EffectiveLength < 96+int(0.19*fs) || m.EffectiveLength > 96+int(0.21*fs) {
		t.Fatalf("EffectiveLength = %d", m.EffectiveLength)
	}
	if m.Center <= 0 || m.Center > 0.2 {
		t.Fatalf("Center = %v", m.Center)
	}
}

func TestAnalyzeFloat32(t *testing.T) {
	h := []float32{0, 0.05, 1, 0.5, 0.25}
	m, err := Analyze(h, 48000)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if m.PeakIndex != 2 || m.Onset != 2 {
		t.Fatalf("PeakIndex = %d, Onset = %d", m.PeakIndex, m.Onset)
	}
	if m.EffectiveLength != len(h) {
		t.Fatalf("EffectiveLength = %d, want %d", m.EffectiveLength, len(h))
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := Analyze([]float64{}, 48000); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty: error = %v", err)
	}
	if _, err := Analyze([]float64{0, 0}, 48000); !errors.Is(err, ErrSilent) {
		t.Fatalf("silent: error = %v", err)
	}
	if _, err := Analyze([]float64{1}, 0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("rate 0: error = %v", err)
	}
}

func TestSchroeder(t *testing.T) {
	s, err := Schroeder([]float64{1, 1, 0})
	if err != nil {
		t.Fatalf("Schroeder() error = %v", err)
	}
	want := []float64{0, 10 * math.Log10(0.5), floorDB}
	for i := range want {
		if math.Abs(s[i]-want[i]) > 1e-12 {
			t.Fatalf("Schroeder() = %v, want %v", s, want)
		}
	}
	for i := 1; i < len(s); i++ {
		if s[i] > s[i-1] {
			t.Fatalf("curve rises at %d: %v", i, s)
		}
	}
}

func TestTruncationLossDB(t *testing.T) {
	h := []float64{1, 1, 1, 1}

	tests := []struct {
		taps int
		want float64
	}{
		{taps: 4, want: math.Inf(-1)},
		{taps: 8, want: math.Inf(-1)},
		{taps: 2, want: 10 * math.Log10(0.5)},
		{taps: 0, want: 0},
	}
	for _, tc := range tests {
		got, err := TruncationLossDB(h, tc.taps)
		if err != nil {
			t.Fatalf("TruncationLossDB(%d) error = %v", tc.taps, err)
		}
		if got != tc.want && math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("TruncationLossDB(%d) = %v, want %v", tc.taps, got, tc.want)
		}
	}

	if _, err := TruncationLossDB([]float32{0}, 1); !errors.Is(err, ErrSilent) {
		t.Fatalf("silent: error = %v", err)
	}
}

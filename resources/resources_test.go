package resources

import (
	"testing"

	"github.com/cwbudde/ircab/dsp/wav"
)

func TestDefaultIRDecodes(t *testing.T) {
	a, err := wav.Decode(DefaultIR)
	if err != nil {
		t.Fatalf("Decode(DefaultIR) error = %v", err)
	}
	if a.SampleRate != 48000 || a.BitsPerSample != 24 || a.Format != wav.FormatPCM {
		t.Fatalf("DefaultIR = %v Hz, %d bits, %v", a.SampleRate, a.BitsPerSample, a.Format)
	}
	if len(a.Samples) != 2048 {
		t.Fatalf("len(Samples) = %d, want 2048", len(a.Samples))
	}

	var peak float32
	for _, v := range a.Samples {
		peak = max(peak, v, -v)
	}
	if peak < 0.5 || peak > 1 {
		t.Fatalf("peak = %v, want within [0.5, 1]", peak)
	}
}

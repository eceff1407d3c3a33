package pipeline

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/ircab/dsp/core"
	"github.com/cwbudde/ircab/dsp/ir"
	"github.com/cwbudde/ircab/dsp/wav"
	"github.com/cwbudde/ircab/internal/testutil"
)

func newSlots(t testing.TB, blockSize int, kernel ...float32) *ir.Slots {
	t.Helper()

	s := ir.NewSlots(48000, blockSize)
	if len(kernel) > 0 {
		if err := s.Stage(wav.Audio{Samples: kernel, SampleRate: 48000}); err != nil {
			t.Fatalf("Stage() error = %v", err)
		}
		s.Promote()
	}
	return s
}

func newPipeline(t testing.TB, slots *ir.Slots, opts ...core.ProcessorOption) *Pipeline {
	t.Helper()

	p, err := New(slots, core.ApplyProcessorOptions(opts...))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func stereo(n int) [][]float32 {
	return [][]float32{make([]float32, n), make([]float32, n)}
}

func TestPassThroughWithoutActiveFilter(t *testing.T) {
	p := newPipeline(t, newSlots(t, 4))

	out := stereo(4)
	p.Process(out, [][]float32{{0.1, -0.2, 0.3, -0.4}})

	want := []float32{0.1, -0.2, 0.3, -0.4}
	for c := range out {
		for i := range want {
			if out[c][i] != want[i] {
				t.Fatalf("out[%d][%d] = %v, want %v", c, i, out[c][i], want[i])
			}
		}
	}
}

func TestPassThroughWhenFilterDisabled(t *testing.T) {
	p := newPipeline(t, newSlots(t, 4, 0.5, 0.5), core.WithFilterEnabled(false))

	out := make([]float64, 4)
	p.ProcessMono(out, []float64{0.4, 0.2, 0, 0})
	testutil.RequireSliceNearlyEqual(t, out, []float64{0.4, 0.2, 0, 0}, 0)

	p.SetFilterEnabled(true)
	p.ProcessMono(out, []float64{0.4, 0.2, 0, 0})
	testutil.RequireSliceNearlyEqual(t, out, []float64{0.2, 0.3, 0.1, 0}, 1e-12)
}

func TestFilterContinuesAcrossBlocks(t *testing.T) {
	kernel := testutil.DecayingKernel(1, 300)
	for i := range kernel {
		kernel[i] *= 0.05
	}
	slots := newSlots(t, 4, testutil.ToFloat32(kernel)...)
	p := newPipeline(t, slots)

	x := testutil.DeterministicNoise(2, 0.5, 4*100)
	want := testutil.DirectConvolve(x, slots.Active().Kernel())

	got := make([]float64, len(x))
	for start := 0; start < len(x); start += 4 {
		p.ProcessMono(got[start:start+4], x[start:start+4])
	}

	for i := range want {
		want[i] = core.Clamp(want[i], -1, 1)
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestInputGain(t *testing.T) {
	p := newPipeline(t, nil, core.WithInputGainDB(6))
	if !core.NearlyEqual(p.InputGain(), 1.995262, 1e-6) {
		t.Fatalf("InputGain() = %v", p.InputGain())
	}

	p.SetInputGain(2)
	out := make([]float64, 4)
	p.ProcessMono(out, []float64{0.25, -0.125, 0, 0.5})
	testutil.RequireSliceNearlyEqual(t, out, []float64{0.5, -0.25, 0, 1}, 0)
}

func TestOutputIsClipped(t *testing.T) {
	tests := []struct {
		name  string
		slots *ir.Slots
	}{
		{"pass-through", nil},
		{"filtered", newSlots(t, 4, testutil.ToFloat32(testutil.DecayingKernel(3, 200))...)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newPipeline(t, tc.slots, core.WithInputGainDB(20))
			x := testutil.ToFloat32(testutil.DeterministicNoise(4, 1e6, 4*64))

			for start := 0; start < len(x); start += 4 {
				out := stereo(4)
				p.Process(out, [][]float32{x[start : start+4]})
				for _, ch := range out {
					testutil.RequireBounded(t, testutil.ToFloat64(ch), -1, 1)
				}
			}
		})
	}
}

func TestNaNInputBecomesSilence(t *testing.T) {
	p := newPipeline(t, nil)
	out := make([]float64, 4)
	p.ProcessMono(out, []float64{math.NaN(), 0.5, math.Inf(1), math.Inf(-1)})
	testutil.RequireSliceNearlyEqual(t, out, []float64{0, 0.5, 1, -1}, 0)
}

func TestShortBuffers(t *testing.T) {
	p := newPipeline(t, nil)

	out := [][]float32{make([]float32, 2), {9, 9, 9, 9, 9, 9}}
	p.Process(out, [][]float32{{0.5, 0.25}})

	if out[0][0] != 0.5 || out[0][1] != 0.25 {
		t.Fatalf("short output = %v", out[0])
	}
	want := []float32{0.5, 0.25, 0, 0, 0, 0}
	for i := range want {
		if out[1][i] != want[i] {
			t.Fatalf("long output = %v, want %v", out[1], want)
		}
	}

	silent := stereo(4)
	silent[0][0] = 1
	p.Process(silent, nil)
	for _, ch := range silent {
		for _, v := range ch {
			if v != 0 {
				t.Fatalf("no input: output = %v, want silence", silent)
			}
		}
	}

	dst := []float64{9, 9, 9, 9, 9}
	p.ProcessMono(dst, []float64{0.1})
	testutil.RequireSliceNearlyEqual(t, dst, []float64{0.1, 0, 0, 0, 0}, 0)
}

func TestNewErrors(t *testing.T) {
	if _, err := New(newSlots(t, 8), core.DefaultProcessorConfig()); !errors.Is(err, ErrBlockSizeMismatch) {
		t.Fatalf("New() error = %v, want %v", err, ErrBlockSizeMismatch)
	}

	cfg := core.DefaultProcessorConfig()
	cfg.OutputChannels = 0
	if _, err := New(nil, cfg); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("New() error = %v, want %v", err, core.ErrInvalidConfig)
	}
}

func TestControlSettersAreConcurrent(t *testing.T) {
	p := newPipeline(t, newSlots(t, 4, 0.5, 0.25))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			p.SetFilterEnabled(i%2 == 0)
			p.SetInputGain(float64(i%3) * 0.5)
		}
	}()

	out := stereo(4)
	in := [][]float32{{1, -1, 0.5, -0.5}}
	for range 1000 {
		p.Process(out, in)
	}
	wg.Wait()
}

func TestProcessZeroAllocs(t *testing.T) {
	p := newPipeline(t, newSlots(t, 4, testutil.ToFloat32(testutil.DecayingKernel(5, 48))...))

	out := stereo(4)
	in := [][]float32{{0.1, 0.2, 0.3, 0.4}}
	allocs := testing.AllocsPerRun(200, func() {
		p.Process(out, in)
	})
	if allocs != 0 {
		t.Fatalf("Process allocs = %v, want 0", allocs)
	}
}

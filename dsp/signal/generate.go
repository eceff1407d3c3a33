package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/ircab/dsp/core"
)

// Kind names a test signal.
type Kind int

const (
	KindSine Kind = iota
	KindNoise
	KindImpulse
	KindSweep
	KindSilence
)

// ErrUnknownKind is returned by ParseKind for an unrecognized name.
var ErrUnknownKind = errors.New("signal: unknown kind")

// ParseKind maps a command-line name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "sine":
		return KindSine, nil
	case "noise":
		return KindNoise, nil
	case "impulse":
		return KindImpulse, nil
	case "sweep":
		return KindSweep, nil
	case "silence":
		return KindSilence, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

func (k Kind) String() string {
	switch k {
	case KindSine:
		return "sine"
	case KindNoise:
		return "noise"
	case KindImpulse:
		return "impulse"
	case KindSweep:
		return "sweep"
	case KindSilence:
		return "silence"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{
		cfg:  core.ApplyProcessorOptions(opts...),
		seed: 1,
	}
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := NewGenerator(coreOpts...)
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Generate renders samples of kind at amplitude. freqHz is the sine
// frequency or the sweep start; the sweep ends at the Nyquist-limited 20 kHz.
func (g *Generator) Generate(kind Kind, freqHz, amplitude float64, samples int) ([]float64, error) {
	switch kind {
	case KindSine:
		return g.Sine(freqHz, amplitude, samples)
	case KindNoise:
		return g.WhiteNoise(amplitude, samples)
	case KindImpulse:
		return g.Impulse(amplitude, samples, 0)
	case KindSweep:
		end := math.Min(20000, 0.45*g.cfg.SampleRate)
		return g.LogSweep(freqHz, end, amplitude, samples)
	case KindSilence:
		if samples <= 0 {
			return nil, fmt.Errorf("silence samples must be > 0: %d", samples)
		}
		return make([]float64, samples), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Impulse generates a single non-zero sample at pos.
func (g *Generator) Impulse(amplitude float64, samples, pos int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("impulse samples must be > 0: %d", samples)
	}
	if pos < 0 || pos >= samples {
		return nil, fmt.Errorf("impulse position out of range: %d", pos)
	}
	out := make([]float64, samples)
	out[pos] = amplitude
	return out, nil
}

// LogSweep generates an exponential sine sweep from startHz to endHz.
func (g *Generator) LogSweep(startHz, endHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sweep samples must be > 0: %d", samples)
	}
	if startHz <= 0 || endHz <= startHz {
		return nil, fmt.Errorf("sweep range invalid: %f..%f", startHz, endHz)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sweep sample rate must be > 0: %f", g.cfg.SampleRate)
	}

	duration := float64(samples) / g.cfg.SampleRate
	k := math.Log(endHz / startHz)
	l := duration / k
	out := make([]float64, samples)
	for i := range out {
		t := float64(i) / g.cfg.SampleRate
		out[i] = amplitude * math.Sin(2*math.Pi*startHz*l*(math.Exp(t/l)-1))
	}
	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := Peak(data)
	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}

// Peak returns the largest absolute sample value.
func Peak[T float32 | float64](data []T) float64 {
	maxAbs := 0.0
	for _, v := range data {
		if av := math.Abs(float64(v)); av > maxAbs {
			maxAbs = av
		}
	}
	return maxAbs
}

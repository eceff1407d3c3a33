package audiofile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cwbudde/ircab/dsp/core"
	"github.com/cwbudde/ircab/dsp/resample"
	"github.com/cwbudde/ircab/dsp/signal"
)

// ErrUnsupportedFile is returned by Open for an unknown file extension.
var ErrUnsupportedFile = errors.New("audiofile: unsupported file type")

// Source delivers mono samples. Read fills block and returns io.EOF once the
// material is exhausted; a final short read may carry io.EOF with n > 0.
type Source interface {
	Read(block []float32) (int, error)
	SampleRate() float64
}

// ReadCloser is a Source backed by an open file.
type ReadCloser interface {
	Source
	io.Closer
}

// WriteCloser is a Sink that must be closed to flush its output.
type WriteCloser interface {
	Write(block [][]float32) error
	io.Closer
}

// Open opens a WAV or MP3 file by extension.
func Open(path string) (ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return OpenWAV(path)
	case ".mp3":
		return OpenMP3(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

// Samples is an in-memory Source.
type Samples struct {
	data []float32
	rate float64
	pos  int
}

// NewSamples returns a source reading data at rate.
func NewSamples(data []float32, rate float64) *Samples {
	return &Samples{data: data, rate: rate}
}

// Generate returns a source holding seconds of a generated test signal.
func Generate(kind signal.Kind, freqHz, amplitude, seconds, rate float64) (*Samples, error) {
	n := int(seconds * rate)
	g := signal.NewGenerator(core.WithSampleRate(rate))
	x, err := g.Generate(kind, freqHz, amplitude, n)
	if err != nil {
		return nil, fmt.Errorf("audiofile: generate %s: %w", kind, err)
	}

	data := make([]float32, len(x))
	for i, v := range x {
		data[i] = float32(v)
	}
	return NewSamples(data, rate), nil
}

func (s *Samples) Read(block []float32) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(block, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func (s *Samples) SampleRate() float64 { return s.rate }

// Len returns the total number of samples.
func (s *Samples) Len() int { return len(s.data) }

// ReadAll drains src.
func ReadAll(src Source) ([]float32, error) {
	var out []float32
	block := make([]float32, 4096)
	for {
		n, err := src.Read(block)
		out = append(out, block[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// Resampled converts a source to another rate with the streaming polyphase
// resampler.
type Resampled struct {
	src  Source
	rate float64
	r    *resample.Resampler

	in      []float32
	scratch []float64
	pending []float64
	eof     bool
}

// NewResampled wraps src so that it delivers samples at rate. It returns src
// unchanged when the rates already match.
func NewResampled(src Source, rate float64, opts ...resample.Option) (Source, error) {
	if resample.SameRate(src.SampleRate(), rate) {
		return src, nil
	}
	r, err := resample.NewForRates(src.SampleRate(), rate, opts...)
	if err != nil {
		return nil, fmt.Errorf("audiofile: resample %g -> %g: %w", src.SampleRate(), rate, err)
	}
	return &Resampled{
		src:  src,
		rate: rate,
		r:    r,
		in:   make([]float32, 1024),
	}, nil
}

func (s *Resampled) Read(block []float32) (int, error) {
	for len(s.pending) < len(block) && !s.eof {
		n, err := s.src.Read(s.in)
		switch {
		case errors.Is(err, io.EOF):
			s.eof = true
		case err != nil:
			return 0, err
		}
		if n == 0 {
			continue
		}

		s.scratch = s.scratch[:0]
		for _, v := range s.in[:n] {
			s.scratch = append(s.scratch, float64(v))
		}
		s.pending = append(s.pending, s.r.Process(s.scratch)...)
	}

	n := min(len(block), len(s.pending))
	for i := range n {
		block[i] = float32(s.pending[i])
	}
	s.pending = s.pending[n:]

	if s.eof && len(s.pending) == 0 {
		return n, io.EOF
	}
	return n, nil
}

func (s *Resampled) SampleRate() float64 { return s.rate }

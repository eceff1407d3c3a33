package audiofile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Errors returned by the WAV source and sink.
var (
	ErrNotWAV          = errors.New("audiofile: not a valid WAV file")
	ErrUnsupportedWAV  = errors.New("audiofile: unsupported WAV encoding")
	ErrInvalidBitDepth = errors.New("audiofile: invalid bit depth")
)

const wavFormatPCM = 1

// WAVSource streams integer PCM frames from a WAV file and mixes them to mono.
type WAVSource struct {
	f        *os.File
	dec      *wav.Decoder
	channels int
	rate     float64
	scale    float32
	buf      *audio.IntBuffer
}

// OpenWAV opens path and positions the decoder at the first PCM frame.
func OpenWAV(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %w", err)
	}

	s, err := newWAVSource(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	s.f = f
	return s, nil
}

func newWAVSource(rs io.ReadSeeker) (*WAVSource, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedWAV, dec.WavAudioFormat)
	}

	var scale float32
	switch dec.BitDepth {
	case 16:
		scale = 1.0 / (1 << 15)
	case 24:
		scale = 1.0 / (1 << 23)
	case 32:
		scale = 1.0 / (1 << 31)
	default:
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedWAV, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWAV, err)
	}
	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, ErrNotWAV
	}

	return &WAVSource{
		dec:      dec,
		channels: format.NumChannels,
		rate:     float64(format.SampleRate),
		scale:    scale,
		buf:      &audio.IntBuffer{Format: format},
	}, nil
}

func (s *WAVSource) Read(block []float32) (int, error) {
	if len(block) == 0 {
		return 0, nil
	}

	want := len(block) * s.channels
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	frames := n / s.channels
	if frames == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		return 0, io.EOF
	}

	inv := s.scale / float32(s.channels)
	for i := range frames {
		var sum int
		for c := range s.channels {
			sum += s.buf.Data[i*s.channels+c]
		}
		block[i] = float32(sum) * inv
	}

	if err != nil && !errors.Is(err, io.EOF) {
		return frames, err
	}
	if frames < len(block) {
		return frames, io.EOF
	}
	return frames, nil
}

func (s *WAVSource) SampleRate() float64 { return s.rate }

// Channels returns the channel count of the file.
func (s *WAVSource) Channels() int { return s.channels }

// Close closes the underlying file.
func (s *WAVSource) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// WAVSink writes rendered blocks to an integer PCM WAV file.
type WAVSink struct {
	f        *os.File
	enc      *wav.Encoder
	channels int
	peak     float32
	buf      *audio.IntBuffer
}

// CreateWAV creates path for channels channels of bitDepth-bit PCM at rate.
// bitDepth must be 16 or 24.
func CreateWAV(path string, rate, bitDepth, channels int) (*WAVSink, error) {
	var peak float32
	switch bitDepth {
	case 16:
		peak = (1 << 15) - 1
	case 24:
		peak = (1 << 23) - 1
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}
	if channels < 1 || rate <= 0 {
		return nil, fmt.Errorf("audiofile: invalid WAV layout %d Hz, %d channels", rate, channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %w", err)
	}

	return &WAVSink{
		f:        f,
		enc:      wav.NewEncoder(f, rate, bitDepth, channels, wavFormatPCM),
		channels: channels,
		peak:     peak,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write interleaves block and appends it to the file. Samples are clamped to
// [-1, 1] before quantization.
func (s *WAVSink) Write(block [][]float32) error {
	if len(block) != s.channels {
		return fmt.Errorf("audiofile: got %d channels, want %d", len(block), s.channels)
	}
	frames := len(block[0])

	want := frames * s.channels
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	for c, ch := range block {
		if len(ch) != frames {
			return fmt.Errorf("audiofile: channel %d has %d frames, want %d", c, len(ch), frames)
		}
		for i, v := range ch {
			v = min(max(v, -1), 1)
			s.buf.Data[i*s.channels+c] = int(v * s.peak)
		}
	}

	return s.enc.Write(s.buf)
}

// Close finalizes the WAV header and closes the file.
func (s *WAVSink) Close() error {
	if s.f == nil {
		return nil
	}
	encErr := s.enc.Close()
	fileErr := s.f.Close()
	s.f = nil
	return errors.Join(encErr, fileErr)
}

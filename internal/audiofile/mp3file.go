package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// mp3FrameBytes is one decoded stereo frame: two little-endian int16 samples.
const mp3FrameBytes = 4

// MP3Source streams an MP3 file, averaging its two decoded channels to mono.
type MP3Source struct {
	f    *os.File
	dec  *mp3.Decoder
	rate float64
	raw  []byte
}

// OpenMP3 opens path and reads the first frame header.
func OpenMP3(path string) (*MP3Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %w", err)
	}

	s, err := NewMP3(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	s.f = f
	return s, nil
}

// NewMP3 decodes MP3 data from r.
func NewMP3(r io.Reader) (*MP3Source, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("audiofile: mp3 decoder: %w", err)
	}
	return &MP3Source{dec: dec, rate: float64(dec.SampleRate())}, nil
}

func (s *MP3Source) Read(block []float32) (int, error) {
	want := len(block) * mp3FrameBytes
	if cap(s.raw) < want {
		s.raw = make([]byte, want)
	}
	s.raw = s.raw[:want]

	n, err := io.ReadFull(s.dec, s.raw)
	frames := n / mp3FrameBytes
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(s.raw[i*mp3FrameBytes:]))
		r := int16(binary.LittleEndian.Uint16(s.raw[i*mp3FrameBytes+2:]))
		block[i] = (float32(l) + float32(r)) * (0.5 / (1 << 15))
	}

	switch {
	case err == nil:
		return frames, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return frames, io.EOF
	default:
		return frames, fmt.Errorf("audiofile: mp3 decode: %w", err)
	}
}

func (s *MP3Source) SampleRate() float64 { return s.rate }

// Close closes the underlying file.
func (s *MP3Source) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

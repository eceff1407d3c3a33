package wav

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Format is the WAVE format tag stored in the fmt chunk.
type Format uint16

const (
	FormatPCM        Format = 1
	FormatIEEEFloat  Format = 3
	FormatALaw       Format = 6
	FormatMuLaw      Format = 7
	FormatExtensible Format = 0xFFFE
)

// String returns a short format name.
func (f Format) String() string {
	switch f {
	case FormatPCM:
		return "pcm"
	case FormatIEEEFloat:
		return "ieee-float"
	case FormatALaw:
		return "a-law"
	case FormatMuLaw:
		return "mu-law"
	case FormatExtensible:
		return "extensible"
	default:
		return fmt.Sprintf("format(%d)", uint16(f))
	}
}

// minFmtSize is the size of the fmt fields read by the decoder.
const minFmtSize = 16

const (
	scale16 = 1.0 / (1 << 15)
	scale24 = 1.0 / (1 << 23)
)

// Audio is a decoded mono sample buffer.
type Audio struct {
	// Samples holds normalized samples, nominally in [-1, 1].
	Samples []float32

	// SampleRate is the rate the samples were recorded at, in Hz.
	SampleRate float64

	Format        Format
	BitsPerSample int
	BlockAlign    int
	ByteRate      int
}

// Duration returns the length of the audio in seconds.
func (a Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / a.SampleRate
}

// Decode parses a mono RIFF/WAVE file held in data.
//
// Supported encodings are integer PCM at 16, 24 and 32 bits and IEEE float at
// 32 bits. 32-bit PCM payloads are read as IEEE float, matching the encoders
// this decoder is used with. Chunks whose identifier is not one of "RIFF",
// "WAVE", "fmt " or "data" are skipped in 4-byte steps.
//
// On failure Decode returns a zero Audio and an error wrapping one of the
// package sentinels.
func Decode(data []byte) (Audio, error) {
	r := reader{buf: data}

	id, err := r.nextChunkID()
	if err != nil {
		return Audio{}, err
	}
	if id != "RIFF" {
		return Audio{}, ErrNotRIFF
	}
	// RIFF tag plus the container size, which is not used.
	if err := r.skip(8); err != nil {
		return Audio{}, err
	}

	if id, err = r.peekID(); err != nil {
		return Audio{}, err
	}
	if id != "WAVE" {
		return Audio{}, ErrNotWAVE
	}
	if err := r.skip(4); err != nil {
		return Audio{}, err
	}

	if id, err = r.nextChunkID(); err != nil {
		return Audio{}, err
	}
	if id != "fmt " {
		return Audio{}, ErrMissingFmt
	}
	if err := r.skip(4); err != nil {
		return Audio{}, err
	}

	fmtSize, err := r.uint32()
	if err != nil {
		return Audio{}, err
	}
	if fmtSize < minFmtSize {
		return Audio{}, fmt.Errorf("%w: fmt chunk size %d, need at least %d", ErrInvalidFile, fmtSize, minFmtSize)
	}

	code, err := r.uint16()
	if err != nil {
		return Audio{}, err
	}
	format := Format(code)
	switch format {
	case FormatPCM, FormatIEEEFloat:
	case FormatALaw:
		return Audio{}, ErrUnsupportedALaw
	case FormatMuLaw:
		return Audio{}, ErrUnsupportedMuLaw
	case FormatExtensible:
		return Audio{}, ErrUnsupportedExtensible
	default:
		return Audio{}, fmt.Errorf("%w: unknown format code %d", ErrInvalidFile, code)
	}

	channels, err := r.uint16()
	if err != nil {
		return Audio{}, err
	}
	if channels != 1 {
		return Audio{}, fmt.Errorf("%w: %d channels", ErrNotMono, channels)
	}

	sampleRate, err := r.uint32()
	if err != nil {
		return Audio{}, err
	}
	byteRate, err := r.uint32()
	if err != nil {
		return Audio{}, err
	}
	blockAlign, err := r.uint16()
	if err != nil {
		return Audio{}, err
	}
	bits, err := r.uint16()
	if err != nil {
		return Audio{}, err
	}

	// Extension fields (cbSize and beyond) are not parsed.
	if fmtSize > minFmtSize {
		return Audio{}, fmt.Errorf("%w: fmt chunk has %d extension bytes", ErrOther, fmtSize-minFmtSize)
	}

	if id, err = r.nextChunkID(); err != nil {
		return Audio{}, err
	}
	if id != "data" {
		return Audio{}, fmt.Errorf("%w: expected data chunk, found %q", ErrInvalidFile, id)
	}
	if err := r.skip(4); err != nil {
		return Audio{}, err
	}

	dataSize, err := r.uint32()
	if err != nil {
		return Audio{}, err
	}
	payload, err := r.bytes(dataSize)
	if err != nil {
		return Audio{}, err
	}

	var samples []float32
	switch {
	case format == FormatIEEEFloat && bits == 32:
		samples = decodeFloat32(payload)
	case format == FormatPCM && bits == 16:
		samples = decodePCM16(payload)
	case format == FormatPCM && bits == 24:
		samples = decodePCM24(payload)
	case format == FormatPCM && bits == 32:
		samples = decodeFloat32(payload)
	default:
		return Audio{}, fmt.Errorf("%w: %s with %d bits", ErrUnsupportedBitsPerSample, format, bits)
	}

	return Audio{
		Samples:       samples,
		SampleRate:    float64(sampleRate),
		Format:        format,
		BitsPerSample: int(bits),
		BlockAlign:    int(blockAlign),
		ByteRate:      int(byteRate),
	}, nil
}

func decodePCM16(p []byte) []float32 {
	out := make([]float32, len(p)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(p[2*i:]))
		out[i] = float32(scale16 * float64(v))
	}
	return out
}

func decodePCM24(p []byte) []float32 {
	out := make([]float32, len(p)/3)
	for i := range out {
		out[i] = float32(scale24 * float64(readInt24(p[3*i:])))
	}
	return out
}

func decodeFloat32(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
	}
	return out
}

// readInt24 reads a little-endian two's-complement 24-bit integer.
func readInt24(b []byte) int32 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&(1<<23) != 0 {
		v |= ^((1 << 24) - 1)
	}
	return v
}

// reader is a bounds-checked cursor over the input slice.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) peekID() (string, error) {
	if r.remaining() < 4 {
		return "", fmt.Errorf("%w: truncated before chunk identifier", ErrInvalidFile)
	}
	return string(r.buf[r.pos : r.pos+4]), nil
}

// nextChunkID advances past junk identifiers and returns the first known
// identifier without consuming it.
func (r *reader) nextChunkID() (string, error) {
	for {
		id, err := r.peekID()
		if err != nil {
			return "", err
		}
		if isKnownID(id) {
			return id, nil
		}
		r.pos += 4
	}
}

func (r *reader) skip(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: truncated", ErrInvalidFile)
	}
	r.pos += n
	return nil
}

func (r *reader) uint16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, fmt.Errorf("%w: truncated header", ErrInvalidFile)
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) uint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("%w: truncated header", ErrInvalidFile)
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n uint32) ([]byte, error) {
	if uint64(n) > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: data chunk declares %d bytes, %d available", ErrInvalidFile, n, r.remaining())
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

func isKnownID(id string) bool {
	switch id {
	case "RIFF", "WAVE", "fmt ", "data":
		return true
	}
	return false
}

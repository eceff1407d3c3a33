package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV format codes used by fixtures.
const (
	FormatPCM        = 1
	FormatIEEEFloat  = 3
	FormatALaw       = 6
	FormatMuLaw      = 7
	FormatExtensible = 0xFFFE
)

// WAVFile describes a RIFF/WAVE byte image. Zero values produce a 48 kHz mono
// 16-bit PCM header around Data.
type WAVFile struct {
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16

	// FmtExtra is appended to the 16 standard fmt bytes.
	FmtExtra []byte

	// JunkBeforeFmt and JunkBeforeData are written verbatim ahead of the
	// respective chunks.
	JunkBeforeFmt  []byte
	JunkBeforeData []byte

	// DataSize overrides the declared data chunk size when non-zero.
	DataSize uint32

	Data []byte
}

// Bytes renders the file image.
func (w WAVFile) Bytes() []byte {
	if w.Format == 0 {
		w.Format = FormatPCM
	}
	if w.Channels == 0 {
		w.Channels = 1
	}
	if w.SampleRate == 0 {
		w.SampleRate = 48000
	}
	if w.BitsPerSample == 0 {
		w.BitsPerSample = 16
	}
	blockAlign := w.Channels * w.BitsPerSample / 8
	byteRate := w.SampleRate * uint32(blockAlign)
	dataSize := uint32(len(w.Data))
	if w.DataSize != 0 {
		dataSize = w.DataSize
	}

	var body bytes.Buffer
	body.WriteString("WAVE")
	body.Write(w.JunkBeforeFmt)
	body.WriteString("fmt ")
	le(&body, uint32(16+len(w.FmtExtra)))
	le(&body, w.Format)
	le(&body, w.Channels)
	le(&body, w.SampleRate)
	le(&body, byteRate)
	le(&body, blockAlign)
	le(&body, w.BitsPerSample)
	body.Write(w.FmtExtra)
	body.Write(w.JunkBeforeData)
	body.WriteString("data")
	le(&body, dataSize)
	body.Write(w.Data)

	var out bytes.Buffer
	out.WriteString("RIFF")
	le(&out, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// JunkChunk returns a "JUNK" chunk with n zero payload bytes. n should be a
// multiple of 4 so the chunk scanner stays aligned.
func JunkChunk(n int) []byte {
	var b bytes.Buffer
	b.WriteString("JUNK")
	le(&b, uint32(n))
	b.Write(make([]byte, n))
	return b.Bytes()
}

// PCM16 encodes samples as little-endian 16-bit integers.
func PCM16(samples ...int16) []byte {
	var b bytes.Buffer
	for _, s := range samples {
		le(&b, s)
	}
	return b.Bytes()
}

// PCM24 encodes samples as little-endian 24-bit integers.
func PCM24(samples ...int32) []byte {
	out := make([]byte, 0, 3*len(samples))
	for _, s := range samples {
		out = append(out, byte(s), byte(s>>8), byte(s>>16))
	}
	return out
}

// Float32 encodes samples as little-endian IEEE floats.
func Float32(samples ...float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}

// MonoFloatWAV is a 32-bit IEEE float mono file at sampleRate.
func MonoFloatWAV(sampleRate uint32, samples []float64) []byte {
	return WAVFile{
		Format:        FormatIEEEFloat,
		SampleRate:    sampleRate,
		BitsPerSample: 32,
		Data:          Float32(ToFloat32(samples)...),
	}.Bytes()
}

func le(b *bytes.Buffer, v any) {
	_ = binary.Write(b, binary.LittleEndian, v)
}

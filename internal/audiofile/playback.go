package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ebitengine/oto/v3"
)

// Playback sends rendered blocks to the default output device.
//
// Only one oto context may exist per process, so a program opens at most one
// Playback.
type Playback struct {
	ctx        *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	channels   int
	raw        []byte
}

// OpenPlayback initializes the output device for channels of float32 audio
// at rate and starts a persistent player fed through a pipe.
func OpenPlayback(rate, channels int) (*Playback, error) {
	if rate <= 0 || channels < 1 {
		return nil, fmt.Errorf("audiofile: invalid playback layout %d Hz, %d channels", rate, channels)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audiofile: create oto context: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	p := &Playback{
		ctx:        ctx,
		player:     ctx.NewPlayer(pr),
		pipeReader: pr,
		pipeWriter: pw,
		channels:   channels,
	}
	p.player.Play()

	return p, nil
}

// Write interleaves block and blocks until the player has consumed it.
func (p *Playback) Write(block [][]float32) error {
	if len(block) != p.channels {
		return fmt.Errorf("audiofile: got %d channels, want %d", len(block), p.channels)
	}

	raw, err := interleaveFloat32LE(p.raw, block)
	if err != nil {
		return err
	}
	p.raw = raw

	if _, err := p.pipeWriter.Write(raw); err != nil {
		return fmt.Errorf("audiofile: playback write: %w", err)
	}
	return nil
}

// Close stops the player and releases the pipe.
func (p *Playback) Close() error {
	var errs []error
	if p.pipeWriter != nil {
		errs = append(errs, p.pipeWriter.Close())
		p.pipeWriter = nil
	}
	if p.player != nil {
		errs = append(errs, p.player.Close())
		p.player = nil
	}
	if p.pipeReader != nil {
		errs = append(errs, p.pipeReader.Close())
		p.pipeReader = nil
	}
	if p.ctx != nil {
		errs = append(errs, p.ctx.Suspend())
		p.ctx = nil
	}
	return errors.Join(errs...)
}

// interleaveFloat32LE packs per-channel samples into frame-interleaved
// little-endian float32 bytes, reusing dst when it is large enough.
func interleaveFloat32LE(dst []byte, block [][]float32) ([]byte, error) {
	channels := len(block)
	if channels == 0 {
		return dst[:0], nil
	}
	frames := len(block[0])

	want := frames * channels * 4
	if cap(dst) < want {
		dst = make([]byte, want)
	}
	dst = dst[:want]

	for c, ch := range block {
		if len(ch) != frames {
			return nil, fmt.Errorf("audiofile: channel %d has %d frames, want %d", c, len(ch), frames)
		}
		for i, v := range ch {
			binary.LittleEndian.PutUint32(dst[(i*channels+c)*4:], math.Float32bits(v))
		}
	}
	return dst, nil
}

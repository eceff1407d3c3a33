package host

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

type sliceSource struct {
	data []float32
	pos  int
}

func (s *sliceSource) Read(block []float32) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(block, s.data[s.pos:])
	s.pos += n
	return n, nil
}

type endlessSource struct{}

func (endlessSource) Read(block []float32) (int, error) {
	for i := range block {
		block[i] = 0.5
	}
	return len(block), nil
}

type errSource struct{ err error }

func (s errSource) Read([]float32) (int, error) { return 0, s.err }

type collectSink struct {
	channels [][]float32
	err      error
}

func (s *collectSink) Write(block [][]float32) error {
	if s.err != nil {
		return s.err
	}
	if s.channels == nil {
		s.channels = make([][]float32, len(block))
	}
	for c, ch := range block {
		s.channels[c] = append(s.channels[c], ch...)
	}
	return nil
}

// doubler writes 2*in[0] to every output channel.
type doubler struct{}

func (doubler) Render(out, in [][]float32) {
	for _, ch := range out {
		for i := range ch {
			ch[i] = 2 * in[0][i]
		}
	}
}

func TestRunFramesBlocks(t *testing.T) {
	src := &sliceSource{data: []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}
	sink := &collectSink{}

	d, err := NewDriver(doubler{}, src, sink, 4, 2)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Blocks != 3 || stats.Frames != 12 || stats.Late != 0 {
		t.Fatalf("stats = %+v, want 3 blocks, 12 frames", stats)
	}

	want := []float32{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 0, 0}
	for c, ch := range sink.channels {
		if len(ch) != len(want) {
			t.Fatalf("channel %d len = %d, want %d", c, len(ch), len(want))
		}
		for i := range want {
			if ch[i] != want[i] {
				t.Fatalf("channel %d = %v, want %v", c, ch, want)
			}
		}
	}
}

func TestRunRendersTail(t *testing.T) {
	src := &sliceSource{data: []float32{1, 1, 1, 1}}
	sink := &collectSink{}

	d, err := NewDriver(doubler{}, src, sink, 4, 1, WithTail(2))
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Blocks != 3 || len(sink.channels[0]) != 12 {
		t.Fatalf("stats = %+v, len = %d", stats, len(sink.channels[0]))
	}
	for _, v := range sink.channels[0][4:] {
		if v != 0 {
			t.Fatalf("tail = %v, want silence", sink.channels[0][4:])
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	d, err := NewDriver(doubler{}, endlessSource{}, &collectSink{}, 4, 2, WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	stats, err := d.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if stats.Blocks == 0 {
		t.Fatal("no blocks rendered before cancel")
	}
}

func TestRunOfflineHonorsCancel(t *testing.T) {
	d, err := NewDriver(doubler{}, endlessSource{}, &collectSink{}, 4, 1)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want %v", err, context.Canceled)
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	readErr := errors.New("adc failure")
	d, err := NewDriver(doubler{}, errSource{readErr}, &collectSink{}, 4, 1)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	if _, err := d.Run(context.Background()); !errors.Is(err, readErr) {
		t.Fatalf("Run() error = %v, want %v", err, readErr)
	}

	writeErr := errors.New("dac failure")
	d, err = NewDriver(doubler{}, endlessSource{}, &collectSink{err: writeErr}, 4, 1)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	if _, err := d.Run(context.Background()); !errors.Is(err, writeErr) {
		t.Fatalf("Run() error = %v, want %v", err, writeErr)
	}
}

func TestNewDriverValidation(t *testing.T) {
	src := &sliceSource{}
	sink := &collectSink{}

	if _, err := NewDriver(nil, src, sink, 4, 2); err == nil {
		t.Fatal("nil renderer accepted")
	}
	if _, err := NewDriver(doubler{}, src, sink, 0, 2); err == nil {
		t.Fatal("zero block size accepted")
	}
	if _, err := NewDriver(doubler{}, src, sink, 4, 0); err == nil {
		t.Fatal("zero channels accepted")
	}
}

func TestWithRealtime(t *testing.T) {
	d, err := NewDriver(doubler{}, &sliceSource{}, &collectSink{}, 48, 2, WithRealtime(48000))
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	if d.Interval() != time.Millisecond {
		t.Fatalf("Interval() = %v, want 1ms", d.Interval())
	}
}

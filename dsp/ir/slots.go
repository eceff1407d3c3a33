package ir

import (
	"sync"
	"sync/atomic"

	"github.com/cwbudde/ircab/dsp/wav"
)

// Slots holds one active and at most one staged filter.
//
// Stage, StageWAV, Promote and Clear run on the control path and serialize
// on an internal mutex. Active is the render-side read: a single atomic load
// that never blocks. A published filter is never modified by the control
// path; the previous active filter is released on promotion and reclaimed once
// the render path stops referencing it.
type Slots struct {
	sampleRate float64
	blockSize  int
	opts       []Option

	mu     sync.Mutex
	staged *ImpulseResponse

	active atomic.Pointer[ImpulseResponse]
}

// NewSlots returns empty slots that build filters for an engine running at
// sampleRate with blocks of blockSize frames.
func NewSlots(sampleRate float64, blockSize int, opts ...Option) *Slots {
	return &Slots{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		opts:       opts,
	}
}

// Stage builds a filter from raw and keeps it in the staged slot, replacing
// any previously staged filter. On failure the staged slot is emptied and the
// active slot is left untouched.
func (s *Slots) Stage(raw wav.Audio) error {
	h, err := New(raw, s.sampleRate, s.blockSize, s.opts...)
	s.setStaged(h)
	return err
}

// StageWAV decodes a WAV blob and stages the resulting filter. Failures
// behave as in Stage; decode errors match the wav sentinels.
func (s *Slots) StageWAV(data []byte) error {
	h, err := FromWAV(data, s.sampleRate, s.blockSize, s.opts...)
	s.setStaged(h)
	return err
}

func (s *Slots) setStaged(h *ImpulseResponse) {
	s.mu.Lock()
	s.staged = h
	s.mu.Unlock()
}

// Promote publishes the staged filter as the active one and empties the
// staged slot. It reports whether a filter was promoted; with nothing staged
// it does nothing.
func (s *Slots) Promote() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged == nil {
		return false
	}
	s.active.Store(s.staged)
	s.staged = nil
	return true
}

// Active returns the active filter, or nil when no filter is active.
func (s *Slots) Active() *ImpulseResponse {
	return s.active.Load()
}

// Staged reports whether a filter is waiting to be promoted.
func (s *Slots) Staged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged != nil
}

// Clear drops the active filter; the render path falls back to pass-through.
func (s *Slots) Clear() {
	s.mu.Lock()
	s.active.Store(nil)
	s.mu.Unlock()
}

// SampleRate returns the rate filters are built for.
func (s *Slots) SampleRate() float64 {
	return s.sampleRate
}

// BlockSize returns the block size filters are built for.
func (s *Slots) BlockSize() int {
	return s.blockSize
}

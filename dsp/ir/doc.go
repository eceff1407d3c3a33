// Package ir implements impulse-response filtering for the render path.
//
// An ImpulseResponse owns a kernel derived from decoded WAV audio: the samples
// are converted to the engine's sample rate and truncated to MaxKernelLength
// taps. Its ProcessBlock method convolves fixed-size blocks without latency
// and without allocating.
//
// Slots implements the double-buffered hand-over between the control path
// and the render path. The control path builds a new filter into the staged
// slot and promotes it; the render path reads the active slot with a single
// atomic load once per tick and therefore always sees a complete filter,
// either the old or the new one.
//
//	slots := ir.NewSlots(48000, 4)
//	if err := slots.StageWAV(blob); err != nil {
//		log.Printf("IR load failed: %s", wav.StatusOf(err))
//	}
//	slots.Promote()
//
//	// render goroutine
//	if h := slots.Active(); h != nil {
//		_ = h.ProcessBlock(out, in)
//	}
package ir

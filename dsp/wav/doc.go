// Package wav decodes mono impulse-response WAV files held in memory.
//
// The decoder is deliberately narrow: it accepts a single channel of 16-, 24-
// or 32-bit integer PCM, or 32-bit IEEE float, and returns normalized float32
// samples together with the source sample rate. It never performs I/O and
// never reads past the end of the supplied slice.
//
// # Usage
//
//	audio, err := wav.Decode(blob)
//	if err != nil {
//		log.Printf("no IR available: %s", wav.StatusOf(err))
//		return
//	}
//	fmt.Println(len(audio.Samples), audio.SampleRate)
//
// # Chunk scanning
//
// Some encoders insert extra chunks ("JUNK", "LIST", "bext", ...) before the
// format or data chunk. Before each required chunk the decoder scans forward
// in 4-byte steps until it finds one of the identifiers "RIFF", "WAVE",
// "fmt " or "data", and fails with [ErrInvalidFile] when fewer than four bytes
// remain.
//
// # Errors
//
// Every failure is reported as one of the package sentinels ([ErrNotRIFF],
// [ErrNotWAVE], [ErrMissingFmt], [ErrInvalidFile], [ErrUnsupportedALaw],
// [ErrUnsupportedMuLaw], [ErrUnsupportedExtensible], [ErrNotMono],
// [ErrUnsupportedBitsPerSample], [ErrOther]), possibly wrapped with context.
// [StatusOf] maps an error to a stable [Status] code for logging.
package wav

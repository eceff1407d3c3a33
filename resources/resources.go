// Package resources holds the compiled-in default impulse response.
package resources

import _ "embed"

// DefaultIR is a mono 24-bit 48 kHz WAV of a short guitar-cabinet style
// impulse response (2048 samples).
//
//go:embed default_ir.wav
var DefaultIR []byte

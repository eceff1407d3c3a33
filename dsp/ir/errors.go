package ir

import "errors"

// Errors returned by filter construction and processing.
var (
	ErrEmptyIR           = errors.New("ir: empty impulse response")
	ErrInvalidSampleRate = errors.New("ir: invalid sample rate")
	ErrInvalidBlockSize  = errors.New("ir: invalid block size")
	ErrLengthMismatch    = errors.New("ir: buffer length mismatch")
)

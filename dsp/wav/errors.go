package wav

import "errors"

// Errors returned by Decode.
var (
	ErrNotRIFF                  = errors.New("wav: not a RIFF container")
	ErrNotWAVE                  = errors.New("wav: not a WAVE file")
	ErrMissingFmt               = errors.New("wav: missing fmt chunk")
	ErrInvalidFile              = errors.New("wav: invalid file")
	ErrUnsupportedALaw          = errors.New("wav: unsupported format A-law")
	ErrUnsupportedMuLaw         = errors.New("wav: unsupported format mu-law")
	ErrUnsupportedExtensible    = errors.New("wav: unsupported format extensible")
	ErrNotMono                  = errors.New("wav: not mono")
	ErrUnsupportedBitsPerSample = errors.New("wav: unsupported bits per sample")
	ErrOther                    = errors.New("wav: unsupported file")
)

// Status is a stable load code for a decode result.
type Status int

const (
	StatusSuccess Status = iota
	StatusNotRIFF
	StatusNotWAVE
	StatusMissingFmt
	StatusInvalidFile
	StatusUnsupportedALaw
	StatusUnsupportedMuLaw
	StatusUnsupportedExtensible
	StatusNotMono
	StatusUnsupportedBitsPerSample
	StatusOther
)

var statusBySentinel = []struct {
	err    error
	status Status
}{
	{ErrNotRIFF, StatusNotRIFF},
	{ErrNotWAVE, StatusNotWAVE},
	{ErrMissingFmt, StatusMissingFmt},
	{ErrInvalidFile, StatusInvalidFile},
	{ErrUnsupportedALaw, StatusUnsupportedALaw},
	{ErrUnsupportedMuLaw, StatusUnsupportedMuLaw},
	{ErrUnsupportedExtensible, StatusUnsupportedExtensible},
	{ErrNotMono, StatusNotMono},
	{ErrUnsupportedBitsPerSample, StatusUnsupportedBitsPerSample},
	{ErrOther, StatusOther},
}

// StatusOf maps err to its Status. A nil error is StatusSuccess; errors that
// do not wrap a package sentinel map to StatusOther.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}

	return StatusOther
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotRIFF:
		return "not-riff"
	case StatusNotWAVE:
		return "not-wave"
	case StatusMissingFmt:
		return "missing-fmt"
	case StatusInvalidFile:
		return "invalid-file"
	case StatusUnsupportedALaw:
		return "unsupported-alaw"
	case StatusUnsupportedMuLaw:
		return "unsupported-mulaw"
	case StatusUnsupportedExtensible:
		return "unsupported-extensible"
	case StatusNotMono:
		return "not-mono"
	case StatusUnsupportedBitsPerSample:
		return "unsupported-bits-per-sample"
	default:
		return "other"
	}
}

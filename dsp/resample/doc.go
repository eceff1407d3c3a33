// Package resample converts sample rates with a polyphase FIR resampler.
//
// It serves two purposes:
//   - Resampler: a streaming rational converter (up/down) that keeps its
//     filter history between Process calls.
//   - Kernel: a one-shot conversion for short, finite signals such as impulse
//     responses. The output is aligned to the input (the filter's group delay
//     is removed) and has length ceil(len(in) * outRate / inRate).
//
// Quality modes select the anti-aliasing prototype filter:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample

// Package decay measures the energy decay of an impulse response from its
// Schroeder backward integral.
//
// Cabinet IRs are short, so the reported reverberation figures are mostly a
// sanity check. The practical numbers are the onset (pre-delay before the
// direct sound), the effective length (where the remaining energy falls
// 60 dB below the total) and the energy a truncation to a fixed number of
// taps would discard.
//
// # Usage
//
//	m, err := decay.Analyze(kernel, 48000)
//	fmt.Printf("onset %d, effective length %d, RT %.3f s\n", m.Onset, m.EffectiveLength, m.RT)
package decay

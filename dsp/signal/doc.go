// Package signal generates deterministic test material (sine, noise, impulse,
// exponential sweep) for driving the pipeline without an audio interface.
package signal

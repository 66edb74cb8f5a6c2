// Package lfsr implements the Fibonacci linear feedback shift register that
// produces carlock unlock codes.
//
// On every clock the register emits its first bit, shifts left by one
// position and appends the feedback bit, which is the XOR of every register
// position selected by the tap mask.
//
// The register is fully predictable: anyone who knows the tap mask and
// Size consecutive output bits can rebuild the register and compute every
// later output. TransitionMatrix exposes the clock as a GF(2) matrix so that
// predictability can be exploited algebraically.
//
// An LFSR is owned by a single caller. Workflows build a fresh one from the
// persisted state for every operation and persist State() afterwards.
package lfsr

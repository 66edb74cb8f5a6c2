package lfsr

import (
	"fmt"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/gf2"
)

// Size is the register length used by the unlock-code protocol.
const Size = 64

// DefaultTaps is the public tap mask of the unlock-code protocol.
var DefaultTaps = []uint8{
	1, 1, 1, 0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 0, 1, 1,
	0, 0, 1, 0, 0, 0, 0, 1, 1, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
}

// LFSR is a Fibonacci linear feedback shift register.
type LFSR struct {
	state []uint8
	taps  []uint8
}

// New builds a register of the given size. The state and taps are copied.
//
// Returns ErrMalformedInput if the lengths differ from size or any element
// is not 0 or 1.
func New(size int, state, taps []uint8) (*LFSR, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: register size must be positive, got %d", kerrors.ErrMalformedInput, size)
	}
	if len(state) != size || len(taps) != size {
		return nil, fmt.Errorf("%w: unequal sizes for taps and state (size %d, state %d, taps %d)",
			kerrors.ErrMalformedInput, size, len(state), len(taps))
	}
	if err := checkBits("state", state); err != nil {
		return nil, err
	}
	if err := checkBits("taps", taps); err != nil {
		return nil, err
	}

	return &LFSR{
		state: append([]uint8(nil), state...),
		taps:  append([]uint8(nil), taps...),
	}, nil
}

func checkBits(field string, bits []uint8) error {
	for i, b := range bits {
		if b > 1 {
			return fmt.Errorf("%w: %s[%d] = %d is not a bit", kerrors.ErrMalformedInput, field, i, b)
		}
	}
	return nil
}

// Clock advances the register once and returns the output bit.
func (l *LFSR) Clock() uint8 {
	var feedback uint8
	for i, b := range l.state {
		feedback ^= b & l.taps[i]
	}
	out := l.state[0]
	copy(l.state, l.state[1:])
	l.state[len(l.state)-1] = feedback
	return out
}

// Output clocks the register n times and returns the emitted bits.
func (l *LFSR) Output(n int) []uint8 {
	if n <= 0 {
		return []uint8{}
	}
	out := make([]uint8, n)
	for i := range out {
		out[i] = l.Clock()
	}
	return out
}

// Skip clocks the register n times, discarding the output.
func (l *LFSR) Skip(n int) {
	for i := 0; i < n; i++ {
		l.Clock()
	}
}

// State returns a copy of the current register.
func (l *LFSR) State() []uint8 {
	return append([]uint8(nil), l.state...)
}

// Taps returns a copy of the tap mask.
func (l *LFSR) Taps() []uint8 {
	return append([]uint8(nil), l.taps...)
}

// Size returns the register length.
func (l *LFSR) Size() int {
	return len(l.state)
}

// TransitionMatrix returns the matrix A with State() after one Clock equal
// to A times State() before it.
func TransitionMatrix(taps []uint8) *gf2.Matrix {
	n := len(taps)
	a := gf2.NewMatrix(n, n)
	for i := 0; i < n-1; i++ {
		a.Set(i, i+1, 1)
	}
	for j, t := range taps {
		a.Set(n-1, j, t&1)
	}
	return a
}

// BlockMatrix returns the matrix advancing the register by one full output
// block of len(taps) clocks.
func BlockMatrix(taps []uint8) *gf2.Matrix {
	return TransitionMatrix(taps).Pow(len(taps))
}

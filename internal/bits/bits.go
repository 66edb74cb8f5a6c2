// Package bits converts between bit sequences and bytes, most significant
// bit first.
package bits

import (
	"fmt"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
)

// ToBytes packs bits into bytes, eight bits per byte, MSB first.
//
// Returns ErrMalformedInput if the length is not a multiple of 8 or an
// element is not 0 or 1.
func ToBytes(bits []uint8) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: only full bytes accepted, got %d bits", kerrors.ErrMalformedInput, len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i, b := range bits {
		if b > 1 {
			return nil, fmt.Errorf("%w: element %d = %d is not a bit", kerrors.ErrMalformedInput, i, b)
		}
		out[i/8] |= b << (7 - i%8)
	}
	return out, nil
}

// FromBytes expands bytes into bits, MSB first.
func FromBytes(data []byte) []uint8 {
	out := make([]uint8, 0, len(data)*8)
	for _, x := range data {
		for j := 7; j >= 0; j-- {
			out = append(out, (x>>j)&1)
		}
	}
	return out
}

// Xor returns a XOR b for equal-length inputs.
func Xor(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: xor of %d and %d bytes", kerrors.ErrMalformedInput, len(a), len(b))
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

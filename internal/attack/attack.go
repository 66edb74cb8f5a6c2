package attack

import (
	"bytes"
	"fmt"

	"github.com/PolarWolf314/carlock/internal/bits"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/gf2"
	"github.com/PolarWolf314/carlock/internal/lfsr"
)

// Observation is one ciphertext block and its offset, in register blocks,
// from a common origin.
type Observation struct {
	Offset     int
	Ciphertext []byte
}

// Recovery is the information extracted from a set of observations.
type Recovery struct {
	// State is the register at offset 0, set only when the observations
	// pin it down completely.
	State []uint8

	// Keystream is the shared counter-mode keystream block, set together
	// with State.
	Keystream []byte

	// Rank is the number of independent equations found.
	Rank int

	size     int
	block    *gf2.Matrix
	ref      Observation
	solution *gf2.Solution
	powers   map[int]*gf2.Matrix
}

// Recover solves the nonce-reuse equations of obs for a register with the
// given public tap mask.
//
// Returns ErrInsufficientData with fewer than two observations,
// ErrMalformedInput for bad taps, offsets or ciphertext lengths, and
// ErrInconsistentObservations when no register explains the ciphertexts.
func Recover(taps []uint8, obs []Observation) (*Recovery, error) {
	n := len(taps)
	if _, err := lfsr.New(n, make([]uint8, n), taps); err != nil {
		return nil, err
	}
	if n%8 != 0 {
		return nil, fmt.Errorf("%w: register size %d is not a whole number of bytes", kerrors.ErrMalformedInput, n)
	}
	if len(obs) < 2 {
		return nil, fmt.Errorf("%w: need at least two artifacts, got %d", kerrors.ErrInsufficientData, len(obs))
	}
	for i, o := range obs {
		if o.Offset < 0 {
			return nil, fmt.Errorf("%w: observation %d has negative offset %d", kerrors.ErrMalformedInput, i, o.Offset)
		}
		if len(o.Ciphertext) != n/8 {
			return nil, fmt.Errorf("%w: observation %d has %d ciphertext bytes, expected %d",
				kerrors.ErrMalformedInput, i, len(o.Ciphertext), n/8)
		}
	}

	r := &Recovery{
		size:   n,
		block:  lfsr.BlockMatrix(taps),
		ref:    Observation{Offset: obs[0].Offset, Ciphertext: append([]byte(nil), obs[0].Ciphertext...)},
		powers: make(map[int]*gf2.Matrix),
	}

	var (
		rows []*gf2.Matrix
		rhs  []uint8
	)
	refPow := r.power(r.ref.Offset)
	for _, o := range obs[1:] {
		diff, err := bits.Xor(o.Ciphertext, r.ref.Ciphertext)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r.power(o.Offset).Add(refPow))
		rhs = append(rhs, bits.FromBytes(diff)...)
	}

	sol, err := gf2.Reduce(gf2.Stack(rows...), rhs)
	if err != nil {
		return nil, err
	}
	r.solution = sol
	r.Rank = sol.Rank

	if sol.Unique() {
		r.State = append([]uint8(nil), sol.Particular...)
		block, err := bits.ToBytes(refPow.MulVec(r.State))
		if err != nil {
			return nil, err
		}
		r.Keystream, _ = bits.Xor(r.ref.Ciphertext, block)

		offsets := make([]int, len(obs))
		for i, o := range obs {
			offsets[i] = o.Offset
		}
		replayed, err := r.Replay(offsets)
		if err != nil {
			return nil, err
		}
		for i, o := range obs {
			if !bytes.Equal(replayed[i], o.Ciphertext) {
				return nil, fmt.Errorf("%w: observation %d does not replay", kerrors.ErrInconsistentObservations, i)
			}
		}
	}

	return r, nil
}

func (r *Recovery) power(k int) *gf2.Matrix {
	if p, ok := r.powers[k]; ok {
		return p
	}
	p := r.block.Pow(k)
	r.powers[k] = p
	return p
}

// Unique reports whether the full register state was recovered.
func (r *Recovery) Unique() bool {
	return r.State != nil
}

// Predict returns the ciphertext the protocol produces at block offset t
// under the shared nonce.
//
// Returns ErrInsufficientData when the observations do not determine it.
func (r *Recovery) Predict(t int) ([]byte, error) {
	if t < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", kerrors.ErrMalformedInput, t)
	}
	g := r.power(r.ref.Offset).Add(r.power(t))
	if !r.solution.Determines(g) {
		return nil, fmt.Errorf("%w: offset %d depends on %d unknown register directions",
			kerrors.ErrInsufficientData, t, len(r.solution.Kernel))
	}
	delta, err := bits.ToBytes(g.MulVec(r.solution.Particular))
	if err != nil {
		return nil, err
	}
	return bits.Xor(r.ref.Ciphertext, delta)
}

// Replay regenerates the ciphertexts at the given offsets from the
// recovered state and keystream.
//
// Returns ErrInsufficientData unless the full state was recovered.
func (r *Recovery) Replay(offsets []int) ([][]byte, error) {
	if !r.Unique() {
		return nil, fmt.Errorf("%w: register state not fully determined (rank %d of %d)",
			kerrors.ErrInsufficientData, r.Rank, r.size)
	}
	out := make([][]byte, len(offsets))
	for i, off := range offsets {
		if off < 0 {
			return nil, fmt.Errorf("%w: negative offset %d", kerrors.ErrMalformedInput, off)
		}
		block, err := bits.ToBytes(r.power(off).MulVec(r.State))
		if err != nil {
			return nil, err
		}
		out[i], err = bits.Xor(r.Keystream, block)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// StateAt returns the register at block offset t.
func (r *Recovery) StateAt(t int) ([]uint8, error) {
	if !r.Unique() {
		return nil, fmt.Errorf("%w: register state not fully determined (rank %d of %d)",
			kerrors.ErrInsufficientData, r.Rank, r.size)
	}
	if t < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", kerrors.ErrMalformedInput, t)
	}
	return r.power(t).MulVec(r.State), nil
}

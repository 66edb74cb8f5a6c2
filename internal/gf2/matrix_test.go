package gf2

import (
	"math/rand"
	"testing"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMatrix(r *rand.Rand, rows, cols int) *Matrix {
	m := NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, uint8(r.Intn(2)))
		}
	}
	return m
}

func randomVector(r *rand.Rand, n int) []uint8 {
	v := make([]uint8, n)
	for i := range v {
		v[i] = uint8(r.Intn(2))
	}
	return v
}

func TestSetGet(t *testing.T) {
	m := NewMatrix(3, 130)
	m.Set(2, 129, 1)
	m.Set(0, 64, 1)
	assert.Equal(t, uint8(1), m.Get(2, 129))
	assert.Equal(t, uint8(1), m.Get(0, 64))
	assert.Equal(t, uint8(0), m.Get(1, 64))

	m.Set(2, 129, 0)
	assert.Equal(t, uint8(0), m.Get(2, 129))
}

func TestIdentityIsNeutral(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	m := randomMatrix(r, 70, 70)
	assert.True(t, Identity(70).Mul(m).Equal(m))
	assert.True(t, m.Mul(Identity(70)).Equal(m))
}

func TestAddIsSelfInverse(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	m := randomMatrix(r, 10, 12)
	zero := NewMatrix(10, 12)
	assert.True(t, m.Add(m).Equal(zero))
}

func TestMulVecMatchesMul(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	a := randomMatrix(r, 20, 65)
	v := randomVector(r, 65)

	col := NewMatrix(65, 1)
	for i, b := range v {
		col.Set(i, 0, b)
	}
	prod := a.Mul(col)

	got := a.MulVec(v)
	for i := range got {
		assert.Equal(t, prod.Get(i, 0), got[i], "row %d", i)
	}
}

func TestPow(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	m := randomMatrix(r, 16, 16)

	assert.True(t, m.Pow(0).Equal(Identity(16)))
	assert.True(t, m.Pow(1).Equal(m))
	assert.True(t, m.Pow(5).Equal(m.Mul(m).Mul(m).Mul(m).Mul(m)))
}

func TestStack(t *testing.T) {
	a := Identity(2)
	b := NewMatrix(1, 2)
	b.Set(0, 1, 1)
	s := Stack(a, b)
	require.Equal(t, 3, s.Rows())
	assert.Equal(t, "10\n01\n01\n", s.String())
}

func TestRank(t *testing.T) {
	assert.Equal(t, 8, Identity(8).Rank())
	assert.Equal(t, 0, NewMatrix(4, 4).Rank())

	m := NewMatrix(3, 3)
	m.Set(0, 0, 1)
	m.Set(0, 1, 1)
	m.Set(1, 1, 1)
	m.Set(2, 0, 1) // row 2 = row 0 + row 1
	assert.Equal(t, 2, m.Rank())
}

func TestSolveUnique(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for trial := 0; trial < 20; trial++ {
		a := randomMatrix(r, 90, 64)
		if a.Rank() < 64 {
			continue
		}
		x := randomVector(r, 64)
		b := a.MulVec(x)

		got, err := Solve(a, b)
		require.NoError(t, err)
		assert.Equal(t, x, got)
	}
}

func TestSolveUnderdetermined(t *testing.T) {
	a := NewMatrix(2, 3)
	a.Set(0, 0, 1)
	a.Set(1, 1, 1)

	_, err := Solve(a, []uint8{1, 0})
	assert.ErrorIs(t, err, kerrors.ErrInsufficientData)
}

func TestSolveInconsistent(t *testing.T) {
	a := NewMatrix(2, 1)
	a.Set(0, 0, 1)
	a.Set(1, 0, 1)

	_, err := Solve(a, []uint8{1, 0})
	assert.ErrorIs(t, err, kerrors.ErrInconsistentObservations)
}

func TestSolveRejectsWrongRightHandSide(t *testing.T) {
	_, err := Solve(Identity(3), []uint8{1})
	assert.ErrorIs(t, err, kerrors.ErrMalformedInput)
}

func TestReduceKernel(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	a := randomMatrix(r, 20, 40)
	x := randomVector(r, 40)
	b := a.MulVec(x)

	sol, err := Reduce(a, b)
	require.NoError(t, err)
	assert.Equal(t, a.Rank(), sol.Rank)
	assert.Len(t, sol.Kernel, 40-sol.Rank)
	assert.Equal(t, b, a.MulVec(sol.Particular))
	for _, k := range sol.Kernel {
		assert.Equal(t, make([]uint8, 20), a.MulVec(k))
	}
	assert.True(t, sol.Determines(a))
}

func TestDeterminesRejectsFreeDirection(t *testing.T) {
	a := NewMatrix(1, 2)
	a.Set(0, 0, 1)
	a.Set(0, 1, 1)
	sol, err := Reduce(a, []uint8{1})
	require.NoError(t, err)
	require.False(t, sol.Unique())

	// x0 + x1 is pinned, x0 alone is not.
	sum := NewMatrix(1, 2)
	sum.Set(0, 0, 1)
	sum.Set(0, 1, 1)
	first := NewMatrix(1, 2)
	first.Set(0, 0, 1)

	assert.True(t, sol.Determines(sum))
	assert.False(t, sol.Determines(first))
}

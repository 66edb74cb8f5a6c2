package gf2

import (
	"fmt"
	"math/bits"
	"strings"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
)

// Matrix is a rows x cols matrix over GF(2).
type Matrix struct {
	rows, cols int
	words      int
	data       [][]uint64
}

// NewMatrix returns a zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	words := (cols + 63) / 64
	data := make([][]uint64, rows)
	for i := range data {
		data[i] = make([]uint64, words)
	}
	return &Matrix{rows: rows, cols: cols, words: words, data: data}
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Get returns the entry at row i, column j.
func (m *Matrix) Get(i, j int) uint8 {
	return uint8(m.data[i][j/64] >> (j % 64) & 1)
}

// Set stores the low bit of v at row i, column j.
func (m *Matrix) Set(i, j int, v uint8) {
	mask := uint64(1) << (j % 64)
	if v&1 == 1 {
		m.data[i][j/64] |= mask
	} else {
		m.data[i][j/64] &^= mask
	}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		copy(c.data[i], m.data[i])
	}
	return c
}

// Equal reports whether both matrices have the same shape and entries.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		for w := range m.data[i] {
			if m.data[i][w] != o.data[i][w] {
				return false
			}
		}
	}
	return true
}

// Add returns m + o.
func (m *Matrix) Add(o *Matrix) *Matrix {
	if m.rows != o.rows || m.cols != o.cols {
		panic(fmt.Sprintf("gf2: add %dx%d and %dx%d", m.rows, m.cols, o.rows, o.cols))
	}
	c := m.Clone()
	for i := range c.data {
		for w := range c.data[i] {
			c.data[i][w] ^= o.data[i][w]
		}
	}
	return c
}

// Mul returns the product m * o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.cols != o.rows {
		panic(fmt.Sprintf("gf2: multiply %dx%d by %dx%d", m.rows, m.cols, o.rows, o.cols))
	}
	c := NewMatrix(m.rows, o.cols)
	for i := 0; i < m.rows; i++ {
		dst := c.data[i]
		for k := 0; k < m.cols; k++ {
			if m.Get(i, k) == 0 {
				continue
			}
			for w, v := range o.data[k] {
				dst[w] ^= v
			}
		}
	}
	return c
}

// MulVec returns m * v for a column vector of bits.
func (m *Matrix) MulVec(v []uint8) []uint8 {
	if len(v) != m.cols {
		panic(fmt.Sprintf("gf2: multiply %dx%d by vector of length %d", m.rows, m.cols, len(v)))
	}
	packed := pack(v, m.words)
	out := make([]uint8, m.rows)
	for i, row := range m.data {
		var acc int
		for w := range row {
			acc += bits.OnesCount64(row[w] & packed[w])
		}
		out[i] = uint8(acc & 1)
	}
	return out
}

// Pow returns m raised to the k-th power. m must be square and k >= 0.
func (m *Matrix) Pow(k int) *Matrix {
	if m.rows != m.cols {
		panic(fmt.Sprintf("gf2: power of non-square %dx%d matrix", m.rows, m.cols))
	}
	if k < 0 {
		panic("gf2: negative power")
	}
	result := Identity(m.rows)
	base := m.Clone()
	for k > 0 {
		if k&1 == 1 {
			result = result.Mul(base)
		}
		k >>= 1
		if k > 0 {
			base = base.Mul(base)
		}
	}
	return result
}

// Stack returns the rows of every matrix, in order, as one matrix.
func Stack(ms ...*Matrix) *Matrix {
	if len(ms) == 0 {
		return NewMatrix(0, 0)
	}
	cols := ms[0].cols
	total := 0
	for _, m := range ms {
		if m.cols != cols {
			panic(fmt.Sprintf("gf2: stack matrices with %d and %d columns", cols, m.cols))
		}
		total += m.rows
	}
	out := NewMatrix(total, cols)
	r := 0
	for _, m := range ms {
		for i := range m.data {
			copy(out.data[r], m.data[i])
			r++
		}
	}
	return out
}

// Rank returns the rank of m.
func (m *Matrix) Rank() int {
	work := m.Clone()
	rank := 0
	for col := 0; col < work.cols && rank < work.rows; col++ {
		pivot := work.findPivot(col, rank)
		if pivot < 0 {
			continue
		}
		work.data[rank], work.data[pivot] = work.data[pivot], work.data[rank]
		work.eliminate(col, rank, nil)
		rank++
	}
	return rank
}

// Solution describes every x with a * x = b: Particular plus any
// combination of the Kernel vectors.
type Solution struct {
	Particular []uint8
	Kernel     [][]uint8
	Rank       int
}

// Unique reports whether the system has exactly one solution.
func (s *Solution) Unique() bool {
	return len(s.Kernel) == 0
}

// Determines reports whether g * x takes the same value for every solution
// x, that is whether g annihilates the kernel.
func (s *Solution) Determines(g *Matrix) bool {
	for _, k := range s.Kernel {
		for _, bit := range g.MulVec(k) {
			if bit != 0 {
				return false
			}
		}
	}
	return true
}

// Reduce brings [a | b] to reduced row echelon form and describes its
// solution set.
//
// Returns ErrInconsistentObservations when no x exists.
func Reduce(a *Matrix, b []uint8) (*Solution, error) {
	if len(b) != a.rows {
		return nil, fmt.Errorf("%w: %d equations but %d right-hand bits", kerrors.ErrMalformedInput, a.rows, len(b))
	}
	work := a.Clone()
	rhs := append([]uint8(nil), b...)

	pivotCols := make([]int, 0, work.cols)
	isPivot := make([]bool, work.cols)
	rank := 0
	for col := 0; col < work.cols && rank < work.rows; col++ {
		pivot := work.findPivot(col, rank)
		if pivot < 0 {
			continue
		}
		work.data[rank], work.data[pivot] = work.data[pivot], work.data[rank]
		rhs[rank], rhs[pivot] = rhs[pivot], rhs[rank]
		work.eliminate(col, rank, rhs)
		pivotCols = append(pivotCols, col)
		isPivot[col] = true
		rank++
	}

	for i := rank; i < work.rows; i++ {
		if rhs[i] != 0 {
			return nil, fmt.Errorf("%w: equation %d reduces to 0 = 1", kerrors.ErrInconsistentObservations, i)
		}
	}

	sol := &Solution{Particular: make([]uint8, work.cols), Rank: rank}
	for i, col := range pivotCols {
		sol.Particular[col] = rhs[i]
	}
	for free := 0; free < work.cols; free++ {
		if isPivot[free] {
			continue
		}
		k := make([]uint8, work.cols)
		k[free] = 1
		for i, col := range pivotCols {
			k[col] = work.Get(i, free)
		}
		sol.Kernel = append(sol.Kernel, k)
	}
	return sol, nil
}

// Solve returns the unique x with a * x = b.
//
// Returns ErrInconsistentObservations when no x exists and
// ErrInsufficientData when more than one does.
func Solve(a *Matrix, b []uint8) ([]uint8, error) {
	sol, err := Reduce(a, b)
	if err != nil {
		return nil, err
	}
	if !sol.Unique() {
		return nil, fmt.Errorf("%w: rank %d of %d", kerrors.ErrInsufficientData, sol.Rank, a.cols)
	}
	return sol.Particular, nil
}

func (m *Matrix) findPivot(col, from int) int {
	for i := from; i < m.rows; i++ {
		if m.Get(i, col) == 1 {
			return i
		}
	}
	return -1
}

// eliminate clears col in every row except pivot, full Gauss-Jordan style.
func (m *Matrix) eliminate(col, pivot int, rhs []uint8) {
	src := m.data[pivot]
	for i := 0; i < m.rows; i++ {
		if i == pivot || m.Get(i, col) == 0 {
			continue
		}
		for w := range src {
			m.data[i][w] ^= src[w]
		}
		if rhs != nil {
			rhs[i] ^= rhs[pivot]
		}
	}
}

// String renders the matrix as rows of 0 and 1.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			sb.WriteByte('0' + m.Get(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pack(v []uint8, words int) []uint64 {
	out := make([]uint64, words)
	for j, b := range v {
		if b&1 == 1 {
			out[j/64] |= uint64(1) << (j % 64)
		}
	}
	return out
}

// Package distmatrix computes symmetric pairwise distance matrices over 3D
// coordinate sets, choosing a computation strategy by problem size.
package distmatrix

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMatrix reports a matrix that breaks the distance invariants.
var ErrInvalidMatrix = errors.New("distmatrix: invalid matrix")

// Matrix is an N×N row-major float32 distance matrix.
// Invariants: symmetric, zero diagonal, finite and non-negative entries.
type Matrix struct {
	n    int
	data []float32
}

// New allocates a zeroed n×n matrix.
func New(n int) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("distmatrix: negative dimension %d", n)
	}
	return &Matrix{n: n, data: make([]float32, n*n)}, nil
}

// FromData wraps a row-major slice of length n*n without copying.
func FromData(n int, data []float32) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("distmatrix: data length %d does not match %d×%d", len(data), n, n)
	}
	return &Matrix{n: n, data: data}, nil
}

// N returns the matrix dimension.
func (m *Matrix) N() int { return m.n }

// At returns d(i, j). Indices are not bounds-checked beyond the slice itself.
func (m *Matrix) At(i, j int) float64 { return float64(m.data[i*m.n+j]) }

// Row returns a read-only view of row i.
func (m *Matrix) Row(i int) []float32 { return m.data[i*m.n : (i+1)*m.n] }

// Data exposes the backing slice for serialization.
func (m *Matrix) Data() []float32 { return m.data }

// setPair writes d(i,j) and d(j,i) together.
func (m *Matrix) setPair(i, j int, v float32) {
	m.data[i*m.n+j] = v
	m.data[j*m.n+i] = v
}

func (m *Matrix) zeroDiagonal() {
	for i := 0; i < m.n; i++ {
		m.data[i*m.n+i] = 0
	}
}

// Validate checks symmetry, zero diagonal and finite non-negative entries.
//
// Complexity: O(n²).
func (m *Matrix) Validate() error {
	if len(m.data) != m.n*m.n {
		return fmt.Errorf("%w: backing length %d for n=%d", ErrInvalidMatrix, len(m.data), m.n)
	}
	for i := 0; i < m.n; i++ {
		if m.data[i*m.n+i] != 0 {
			return fmt.Errorf("%w: non-zero diagonal at %d", ErrInvalidMatrix, i)
		}
		for j := i + 1; j < m.n; j++ {
			a := m.data[i*m.n+j]
			b := m.data[j*m.n+i]
			if math.IsNaN(float64(a)) || math.IsInf(float64(a), 0) || a < 0 {
				return fmt.Errorf("%w: entry (%d,%d)=%v", ErrInvalidMatrix, i, j, a)
			}
			if a != b {
				return fmt.Errorf("%w: asymmetric at (%d,%d): %v != %v", ErrInvalidMatrix, i, j, a, b)
			}
		}
	}
	return nil
}

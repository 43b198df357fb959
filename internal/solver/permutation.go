// Package solver orders the points of a distance matrix into a short tour
// under a hard wall-clock budget.
//
// The primary heuristic runs in a separate OS process so that it can be
// killed when the budget expires; the greedy nearest-neighbor construction
// is used whenever the primary strategy times out or fails.
package solver

import (
	"errors"
	"fmt"

	"waypoint-route-service/internal/distmatrix"
)

// ErrInvalidPermutation reports a visiting order that is not a bijection over 0..n-1.
var ErrInvalidPermutation = errors.New("solver: invalid permutation")

// ValidatePermutation checks that perm is a permutation of {0..n-1}.
//
// Complexity: O(n) time, O(n) space.
func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidPermutation, len(perm), n)
	}
	seen := make([]bool, n)
	for i, v := range perm {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: index %d out of range at position %d", ErrInvalidPermutation, v, i)
		}
		if seen[v] {
			return fmt.Errorf("%w: duplicate index %d at position %d", ErrInvalidPermutation, v, i)
		}
		seen[v] = true
	}
	return nil
}

// Identity returns [0, 1, …, n-1].
func Identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// TourLength sums d(perm[i], perm[i+1]); closed adds the leg back to perm[0].
func TourLength(m *distmatrix.Matrix, perm []int, closed bool) float64 {
	if len(perm) < 2 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(perm); i++ {
		sum += m.At(perm[i], perm[i+1])
	}
	if closed {
		sum += m.At(perm[len(perm)-1], perm[0])
	}
	return sum
}

package solver

import (
	"fmt"

	"waypoint-route-service/internal/distmatrix"

	"github.com/katalvlaran/lvlath/tsp"
)

// ExactLimit is the largest instance solved to optimality. The Held-Karp
// table grows as n·2ⁿ, so bigger instances go to the local search.
const ExactLimit = 12

// Exact returns an optimal closed tour starting at index 0, computed by the
// lvlath Held-Karp solver over a float64 copy of m.
//
// Complexity: O(n²·2ⁿ) time, O(n·2ⁿ) memory.
func Exact(m *distmatrix.Matrix) ([]int, error) {
	n := m.N()
	if n < 3 {
		return Identity(n), nil
	}
	if n > ExactLimit {
		return nil, fmt.Errorf("exact tour: %d points exceeds limit %d", n, ExactLimit)
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = m.At(i, j)
		}
	}

	res, err := tsp.TSPExact(dist)
	if err != nil {
		return nil, fmt.Errorf("exact tour: %w", err)
	}

	// The lvlath tour is closed: [0, …, 0].
	if len(res.Tour) != n+1 {
		return nil, fmt.Errorf("exact tour: tour length %d, want %d", len(res.Tour), n+1)
	}
	perm := append([]int(nil), res.Tour[:n]...)
	if err := ValidatePermutation(perm, n); err != nil {
		return nil, fmt.Errorf("exact tour: %w", err)
	}
	return perm, nil
}

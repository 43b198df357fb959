package solver

import (
	"math"

	"waypoint-route-service/internal/distmatrix"
)

// NearestNeighbor builds a tour greedily from index 0.
//
// At each step the closest unvisited index is chosen; ties go to the lowest
// index so the result is deterministic. If no finite candidate exists (a
// corrupted matrix), the lowest remaining index is taken instead.
//
// Complexity: O(n²) time, O(n) space.
func NearestNeighbor(m *distmatrix.Matrix) []int {
	n := m.N()
	if n == 0 {
		return []int{}
	}

	visited := make([]bool, n)
	tour := make([]int, 0, n)

	current := 0
	visited[current] = true
	tour = append(tour, current)

	for len(tour) < n {
		row := m.Row(current)

		best := -1
		bestDist := math.Inf(1)

		// Strict comparison keeps the lowest index on ties.
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			d := float64(row[j])
			if math.IsNaN(d) || math.IsInf(d, 0) {
				continue
			}
			if d < bestDist {
				bestDist = d
				best = j
			}
		}

		if best == -1 {
			for j := 0; j < n; j++ {
				if !visited[j] {
					best = j
					break
				}
			}
		}

		visited[best] = true
		tour = append(tour, best)
		current = best
	}

	return tour
}

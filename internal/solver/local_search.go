package solver

import (
	"slices"

	"waypoint-route-service/internal/distmatrix"
)

// improveEps is the minimal gain for accepting a move; it keeps float32
// rounding noise from cycling the search.
const improveEps = 1e-9

// LocalSearch improves a closed tour with alternating 2-opt and Or-opt passes
// until neither neighborhood yields an improving move.
//
// tour[0] is kept in place, so a tour starting at index 0 still starts there.
// The input slice is not modified. There is no internal cancellation: the
// caller bounds the run time by executing it in a killable process.
func LocalSearch(m *distmatrix.Matrix, tour []int) []int {
	cur := slices.Clone(tour)
	if len(cur) < 4 {
		return cur
	}

	for {
		improved := twoOptPass(m, cur)
		if orOptPass(m, &cur) {
			improved = true
		}
		if !improved {
			return cur
		}
	}
}

// Heuristic is the primary tour strategy. Instances up to ExactLimit points
// are solved optimally by Exact; larger ones use nearest neighbor
// construction followed by LocalSearch.
func Heuristic(m *distmatrix.Matrix) []int {
	if m.N() <= ExactLimit {
		if perm, err := Exact(m); err == nil {
			return perm
		}
	}
	return LocalSearch(m, NearestNeighbor(m))
}

// twoOptPass scans all edge pairs once and applies every improving reversal.
//
// Edges are (t[i], t[i+1]) and (t[k], t[k+1 mod n]). Reversing t[i+1..k]
// replaces them with (t[i], t[k]) and (t[i+1], t[k+1]).
// Δ = d(a,c) + d(b,e) − d(a,b) − d(c,e).
//
// Complexity: O(n²) candidate checks plus O(n) per accepted move.
func twoOptPass(m *distmatrix.Matrix, t []int) bool {
	n := len(t)
	improved := false

	for i := 0; i < n-2; i++ {
		for k := i + 2; k < n; k++ {
			if i == 0 && k == n-1 {
				continue // the two edges share t[0]
			}
			a, b := t[i], t[i+1]
			c, e := t[k], t[(k+1)%n]

			delta := m.At(a, c) + m.At(b, e) - m.At(a, b) - m.At(c, e)
			if delta < -improveEps {
				slices.Reverse(t[i+1 : k+1])
				improved = true
			}
		}
	}
	return improved
}

// orOptPass relocates segments of 1..3 consecutive points to the cheapest
// improving position, optionally reversed. The first improving move found
// for a segment is applied and the pass continues with the updated tour.
//
// Complexity: O(n²) per segment length plus O(n) per accepted move.
func orOptPass(m *distmatrix.Matrix, tp *[]int) bool {
	improved := false

	for segLen := 1; segLen <= 3; segLen++ {
		t := *tp
		n := len(t)
		if n < segLen+3 {
			continue
		}

		for i := 1; i+segLen <= n; i++ {
			t = *tp
			s0, sE := t[i], t[i+segLen-1]
			prev, next := t[i-1], t[(i+segLen)%n]

			removeGain := m.At(prev, s0) + m.At(sE, next) - m.At(prev, next)
			if removeGain <= improveEps {
				continue
			}

			bestJ, bestDelta, bestRev := -1, -improveEps, false
			for j := 0; j < n; j++ {
				if j >= i-1 && j < i+segLen {
					continue // edge touches the segment
				}
				p, q := t[j], t[(j+1)%n]
				base := m.At(p, q)

				fwd := m.At(p, s0) + m.At(sE, q) - base - removeGain
				if fwd < bestDelta {
					bestJ, bestDelta, bestRev = j, fwd, false
				}
				rev := m.At(p, sE) + m.At(s0, q) - base - removeGain
				if rev < bestDelta {
					bestJ, bestDelta, bestRev = j, rev, true
				}
			}

			if bestJ >= 0 {
				*tp = moveSegment(t, i, segLen, t[bestJ], bestRev)
				improved = true
			}
		}
	}
	return improved
}

// moveSegment removes t[i:i+segLen] and reinserts it right after the point
// after, reversed if requested. t[0] is never part of the segment and stays first.
func moveSegment(t []int, i, segLen, after int, reverse bool) []int {
	seg := slices.Clone(t[i : i+segLen])
	if reverse {
		slices.Reverse(seg)
	}

	rest := make([]int, 0, len(t))
	rest = append(rest, t[:i]...)
	rest = append(rest, t[i+segLen:]...)

	pos := slices.Index(rest, after) + 1
	return slices.Insert(rest, pos, seg...)
}

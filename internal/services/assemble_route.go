package services

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/solver"

	"github.com/xrash/smetrics"
)

// SplitFixedStart removes the requested starting waypoint from the
// optimization subset. Matching is case-insensitive on trimmed names.
//
// An unknown start is not an error: the full list is returned with
// found=false and the caller decides whether to look for a suggestion.
func SplitFixedStart(waypoints []domain.Waypoint, name string) (*domain.Waypoint, []domain.Waypoint, bool) {
	want := strings.TrimSpace(name)
	if want == "" {
		return nil, waypoints, false
	}

	for i, w := range waypoints {
		if strings.EqualFold(strings.TrimSpace(w.Name), want) {
			start := w
			rest := make([]domain.Waypoint, 0, len(waypoints)-1)
			rest = append(rest, waypoints[:i]...)
			rest = append(rest, waypoints[i+1:]...)
			return &start, rest, true
		}
	}

	return nil, waypoints, false
}

// minSuggestScore is the Jaro-Winkler similarity a name needs to be offered
// as a correction.
const minSuggestScore = 0.85

// SuggestSystem returns the waypoint name most similar to name, ignoring
// case, when it is close enough to be a likely typo.
func SuggestSystem(waypoints []domain.Waypoint, name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return "", false
	}

	best, bestScore := "", 0.0
	for _, w := range waypoints {
		score := smetrics.JaroWinkler(want, strings.ToLower(w.Name), 0.7, 4)
		if score > bestScore {
			best, bestScore = w.Name, score
		}
	}
	if bestScore < minSuggestScore {
		return "", false
	}
	return best, true
}

// ValidateJumpRange rejects non-positive or non-finite jump ranges.
func ValidateJumpRange(jumpRange float64) error {
	if math.IsNaN(jumpRange) || math.IsInf(jumpRange, 0) || jumpRange <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRange, jumpRange)
	}
	return nil
}

// JumpsFor returns ceil(distance / jumpRange); zero-length legs need no jump.
// Counts that do not fit an int64, including non-finite input, saturate at
// math.MaxInt64.
func JumpsFor(distance, jumpRange float64) int64 {
	if distance <= 0 {
		return 0
	}
	jumps := math.Ceil(distance / jumpRange)
	if math.IsNaN(jumps) || jumps >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(jumps)
}

// addJumps sums jump counts, saturating at math.MaxInt64.
func addJumps(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// OrientFromStart picks the rotation and direction of the closed tour perm
// over rest that is cheapest to fly from start: d(start, first) plus the open
// path, plus d(last, start) when returnToStart is set. perm itself is not
// modified.
//
// Complexity: O(n).
func OrientFromStart(rest []domain.Waypoint, perm []int, start domain.Waypoint, returnToStart bool) ([]int, error) {
	n := len(perm)
	if err := solver.ValidatePermutation(perm, len(rest)); err != nil {
		return nil, fmt.Errorf("orient from start: %w", err)
	}
	if n < 2 {
		return slices.Clone(perm), nil
	}

	at := func(i int) domain.Point3 { return rest[perm[(i%n+n)%n]].Coords }

	// edge[i] joins positions i and i+1 of the closed tour.
	edge := make([]float64, n)
	fromStart := make([]float64, n)
	var closed float64
	for i := 0; i < n; i++ {
		edge[i] = at(i).DistanceTo(at(i + 1))
		fromStart[i] = start.Coords.DistanceTo(at(i))
		closed += edge[i]
	}

	cost := func(first, last int, dropped float64) float64 {
		c := fromStart[first] + closed - dropped
		if returnToStart {
			c += fromStart[last]
		}
		return c
	}

	bestK, bestRev := 0, false
	best := cost(0, n-1, edge[n-1])
	for k := 0; k < n; k++ {
		prev, next := (k-1+n)%n, (k+1)%n
		if c := cost(k, prev, edge[prev]); c < best {
			best, bestK, bestRev = c, k, false
		}
		if c := cost(k, next, edge[k]); c < best {
			best, bestK, bestRev = c, k, true
		}
	}

	out := make([]int, n)
	for i := range out {
		if bestRev {
			out[i] = perm[((bestK-i)%n+n)%n]
		} else {
			out[i] = perm[(bestK+i)%n]
		}
	}
	return out, nil
}

// AssembleRoute orders rest by perm, prepends the fixed start if any, and
// derives per-segment distances, the total distance and the jump count.
//
// With returnToStart the closing leg back to the first waypoint is added as
// a final segment.
func AssembleRoute(
	rest []domain.Waypoint,
	perm []int,
	start *domain.Waypoint,
	jumpRange float64,
	returnToStart bool,
) (domain.Route, error) {
	if err := ValidateJumpRange(jumpRange); err != nil {
		return domain.Route{}, fmt.Errorf("assemble route: %w", err)
	}
	if err := solver.ValidatePermutation(perm, len(rest)); err != nil {
		return domain.Route{}, fmt.Errorf("assemble route: %w", err)
	}

	ordered := make([]domain.Waypoint, 0, len(rest)+1)
	if start != nil {
		ordered = append(ordered, *start)
	}
	for _, i := range perm {
		ordered = append(ordered, rest[i])
	}

	route := domain.Route{
		Waypoints:        ordered,
		SegmentDistances: make([]float64, 0, len(ordered)),
		JumpRange:        jumpRange,
		ReturnToStart:    returnToStart,
	}

	addLeg := func(from, to domain.Waypoint) error {
		d := from.Coords.DistanceTo(to.Coords)
		if math.IsInf(d, 0) || math.IsNaN(d) {
			return fmt.Errorf("assemble route: %w: leg %q -> %q", domain.ErrInvalidCoordinates, from.Name, to.Name)
		}
		route.SegmentDistances = append(route.SegmentDistances, d)
		route.TotalDistance += d
		route.TotalJumps = addJumps(route.TotalJumps, JumpsFor(d, jumpRange))
		return nil
	}

	for i := 0; i+1 < len(ordered); i++ {
		if err := addLeg(ordered[i], ordered[i+1]); err != nil {
			return domain.Route{}, err
		}
	}
	if returnToStart && len(ordered) > 1 {
		if err := addLeg(ordered[len(ordered)-1], ordered[0]); err != nil {
			return domain.Route{}, err
		}
	}
	if math.IsInf(route.TotalDistance, 0) {
		return domain.Route{}, fmt.Errorf("assemble route: %w: total distance overflows", domain.ErrInvalidCoordinates)
	}

	return route, nil
}

package services_test

import (
	"math"
	"math/rand"
	"testing"

	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/services"
	"waypoint-route-service/internal/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareWaypoints(t *testing.T) []domain.Waypoint {
	t.Helper()
	w, _, err := services.GroupSystems(squareTable())
	require.NoError(t, err)
	return w
}

func TestAssembleRouteSquare(t *testing.T) {
	w := squareWaypoints(t)

	open, err := services.AssembleRoute(w, []int{0, 1, 2, 3}, nil, 8.0, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 10, 10}, open.SegmentDistances)
	assert.Equal(t, 30.0, open.TotalDistance)
	assert.Equal(t, int64(6), open.TotalJumps)

	closed, err := services.AssembleRoute(w, []int{0, 1, 2, 3}, nil, 8.0, true)
	require.NoError(t, err)
	assert.Len(t, closed.SegmentDistances, 4)
	assert.Equal(t, 40.0, closed.TotalDistance)
	assert.Equal(t, int64(8), closed.TotalJumps)
}

func TestAssembleRoutePrependsStart(t *testing.T) {
	w := squareWaypoints(t)
	start, rest, found := services.SplitFixedStart(w, "  c ")
	require.True(t, found)
	require.Equal(t, "C", start.Name)
	require.Len(t, rest, 3)

	route, err := services.AssembleRoute(rest, []int{2, 0, 1}, start, 4, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D", "A", "B"}, mustNames(t, route))
	assert.Len(t, route.SegmentDistances, 3)
}

func TestSplitFixedStartUnknown(t *testing.T) {
	w := squareWaypoints(t)

	start, rest, found := services.SplitFixedStart(w, "Nowhere")
	assert.Nil(t, start)
	assert.False(t, found)
	assert.Len(t, rest, 4)

	start, rest, found = services.SplitFixedStart(w, "   ")
	assert.Nil(t, start)
	assert.False(t, found)
	assert.Len(t, rest, 4)
}

func TestAssembleRouteRejectsInvalidRange(t *testing.T) {
	w := squareWaypoints(t)
	for _, r := range []float64{0, -8, math.NaN(), math.Inf(1)} {
		_, err := services.AssembleRoute(w, []int{0, 1, 2, 3}, nil, r, false)
		assert.ErrorIs(t, err, domain.ErrInvalidRange, "range=%v", r)
	}
}

func TestAssembleRouteRejectsBadPermutation(t *testing.T) {
	w := squareWaypoints(t)
	_, err := services.AssembleRoute(w, []int{0, 1, 1, 3}, nil, 8, false)
	assert.ErrorIs(t, err, solver.ErrInvalidPermutation)
}

func TestTotalJumpsMatchesCeilSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rows := make([]row, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, row{
			name: string(rune('a'+i%26)) + string(rune('A'+i/26)),
			x:    rng.Float64() * 200, y: rng.Float64() * 200, z: rng.Float64() * 200,
		})
	}
	w, _, err := services.GroupSystems(tableOf(rows...))
	require.NoError(t, err)

	perm := rng.Perm(len(w))
	for _, jr := range []float64{0.5, 7.3, 42, 1000} {
		route, err := services.AssembleRoute(w, perm, nil, jr, true)
		require.NoError(t, err)

		var want int64
		var total float64
		for _, d := range route.SegmentDistances {
			want += int64(math.Ceil(d / jr))
			total += d
		}
		assert.Equal(t, want, route.TotalJumps, "jump range %v", jr)
		assert.InDelta(t, total, route.TotalDistance, 1e-9)
	}
}

func TestJumpsFor(t *testing.T) {
	assert.Equal(t, int64(0), services.JumpsFor(0, 8))
	assert.Equal(t, int64(1), services.JumpsFor(8, 8))
	assert.Equal(t, int64(2), services.JumpsFor(10, 8))
	assert.Equal(t, int64(1), services.JumpsFor(0.1, 8))
}

func TestJumpsForSaturates(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), services.JumpsFor(math.Inf(1), 8))
	assert.Equal(t, int64(math.MaxInt64), services.JumpsFor(math.NaN(), 8))
	assert.Equal(t, int64(math.MaxInt64), services.JumpsFor(1e200, 50))
	assert.Equal(t, int64(math.MaxInt64), services.JumpsFor(1e300, 1e-10))
}

func TestAssembleRouteRejectsOverflowingLeg(t *testing.T) {
	w := []domain.Waypoint{
		{Name: "West", Coords: domain.Point3{X: -math.MaxFloat64}},
		{Name: "East", Coords: domain.Point3{X: math.MaxFloat64}},
	}
	_, err := services.AssembleRoute(w, []int{0, 1}, nil, 50, false)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)
}

func TestAssembleRouteSaturatesJumps(t *testing.T) {
	w := []domain.Waypoint{
		{Name: "A"},
		{Name: "B", Coords: domain.Point3{X: 1e30}},
		{Name: "C", Coords: domain.Point3{X: -1e30}},
	}
	route, err := services.AssembleRoute(w, []int{0, 1, 2}, nil, 1e-6, true)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), route.TotalJumps)
	assert.False(t, math.IsInf(route.TotalDistance, 0))
}

func TestOrientFromStartPicksNearEnd(t *testing.T) {
	rest := []domain.Waypoint{
		{Name: "B", Coords: domain.Point3{X: 100}},
		{Name: "C", Coords: domain.Point3{X: 1}},
	}
	start := domain.Waypoint{Name: "A"}

	perm, err := services.OrientFromStart(rest, []int{0, 1}, start, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, perm)

	route, err := services.AssembleRoute(rest, perm, &start, 50, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, mustNames(t, route))
	assert.InDelta(t, 100.0, route.TotalDistance, 1e-9)
	assert.Equal(t, int64(3), route.TotalJumps)
}

func TestOrientFromStartRotatesAndReverses(t *testing.T) {
	// Points on a line with the start just past the last one: the best open
	// path walks the tour backwards from index 4.
	rest := make([]domain.Waypoint, 5)
	for i := range rest {
		rest[i] = domain.Waypoint{Name: string(rune('P' + i)), Coords: domain.Point3{X: float64(i * 10)}}
	}
	start := domain.Waypoint{Name: "S", Coords: domain.Point3{X: 41}}
	in := []int{0, 1, 2, 3, 4}

	perm, err := services.OrientFromStart(rest, in, start, false)
	require.NoError(t, err)
	require.NoError(t, solver.ValidatePermutation(perm, len(rest)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, in, "input must not change")
	assert.Equal(t, []int{4, 3, 2, 1, 0}, perm)

	route, err := services.AssembleRoute(rest, perm, &start, 10, false)
	require.NoError(t, err)
	assert.InDelta(t, 1.0+40.0, route.TotalDistance, 1e-9)
}

func TestOrientFromStartNeverWorsensRoute(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rest := make([]domain.Waypoint, 25)
	for i := range rest {
		rest[i] = domain.Waypoint{Coords: domain.Point3{X: rng.Float64() * 100, Y: rng.Float64() * 100}}
	}
	start := domain.Waypoint{Name: "S", Coords: domain.Point3{X: 50, Y: 50}}
	in := rng.Perm(len(rest))

	for _, ret := range []bool{false, true} {
		before, err := services.AssembleRoute(rest, in, &start, 5, ret)
		require.NoError(t, err)

		perm, err := services.OrientFromStart(rest, in, start, ret)
		require.NoError(t, err)
		after, err := services.AssembleRoute(rest, perm, &start, 5, ret)
		require.NoError(t, err)

		assert.LessOrEqual(t, after.TotalDistance, before.TotalDistance+1e-9, "returnToStart=%v", ret)
	}
}

func TestOrientFromStartRejectsBadPermutation(t *testing.T) {
	rest := []domain.Waypoint{{Name: "B"}, {Name: "C"}}
	_, err := services.OrientFromStart(rest, []int{0, 0}, domain.Waypoint{Name: "A"}, false)
	assert.ErrorIs(t, err, solver.ErrInvalidPermutation)
}

func TestSuggestSystem(t *testing.T) {
	w, _, err := services.GroupSystems(tableOf(
		row{name: "Colonia"},
		row{name: "Sagittarius A*", x: 1},
		row{name: "Beagle Point", x: 2},
	))
	require.NoError(t, err)

	got, ok := services.SuggestSystem(w, "colonai")
	assert.True(t, ok)
	assert.Equal(t, "Colonia", got)

	_, ok = services.SuggestSystem(w, "Achenar")
	assert.False(t, ok)

	_, ok = services.SuggestSystem(w, "  ")
	assert.False(t, ok)
}

package solver_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func matrixFor(t *testing.T, pts ...domain.Point3) *distmatrix.Matrix {
	t.Helper()
	m, _, err := distmatrix.NewCalculator().Compute(context.Background(), pts, distmatrix.Direct, nil)
	require.NoError(t, err)
	return m
}

func randomMatrix(t *testing.T, n int, seed int64) *distmatrix.Matrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	pts := make([]domain.Point3, n)
	for i := range pts {
		pts[i] = domain.Point3{X: rng.Float64() * 100, Y: rng.Float64() * 100, Z: rng.Float64() * 100}
	}
	return matrixFor(t, pts...)
}

// circle returns n points on a circle in visiting order.
func circle(n int) []domain.Point3 {
	pts := make([]domain.Point3, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = domain.Point3{X: 100 * math.Cos(a), Y: 100 * math.Sin(a)}
	}
	return pts
}

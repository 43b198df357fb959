package distmatrix

import (
	"context"

	"waypoint-route-service/internal/domain"
)

// ReplaceStrategy swaps the implementation behind a mode for failure-injection tests.
func (c *Calculator) ReplaceStrategy(mode Mode, fn func(ctx context.Context, coords domain.CoordinateSet, m *Matrix, progress ProgressFunc) error) {
	c.strategies[mode] = fn
}

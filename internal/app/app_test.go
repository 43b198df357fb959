package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"waypoint-route-service/internal/adapters/status"
	"waypoint-route-service/internal/config"
	"waypoint-route-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStoresSQLite(t *testing.T) {
	s, err := OpenStores(context.Background(), config.StoreConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "app.db"),
	})
	require.NoError(t, err)
	defer s.Close()

	_, isSQL := s.Statuses.(*status.SQLStore)
	assert.True(t, isSQL)

	ctx := context.Background()
	require.NoError(t, s.Statuses.Save(ctx, "s", map[string]domain.Status{"Sol": domain.StatusVisited}))
	got, err := s.Statuses.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVisited, got["Sol"])
}

func TestOpenStoresRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := OpenStores(context.Background(), config.StoreConfig{
		Driver:    "sqlite",
		DSN:       filepath.Join(t.TempDir(), "app.db"),
		RedisAddr: mr.Addr(),
	})
	require.NoError(t, err)
	defer s.Close()

	_, isRedis := s.Statuses.(*status.RedisStore)
	assert.True(t, isRedis)
}

func TestOpenStoresUnknownDriver(t *testing.T) {
	_, err := OpenStores(context.Background(), config.StoreConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestNewCalculatorHonoursTileSize(t *testing.T) {
	calc := NewCalculator(config.OptimizerConfig{TileSize: 150, MemoryBudgetBytes: 1 << 30})
	assert.Equal(t, 150, calc.TileSize())
}

func TestNewSolverUsesTimeout(t *testing.T) {
	cfg := config.OptimizerConfig{TSPTimeout: 7 * time.Second, WorkerCommand: "/bin/true --flag"}
	s, err := NewSolver(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.TSPTimeout, s.Timeout())
}

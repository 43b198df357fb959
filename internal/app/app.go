// Package app holds the composition helpers shared by the binaries: it turns
// a config.Config into a calculator, a solver and storage adapters.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"waypoint-route-service/internal/adapters/repositories"
	"waypoint-route-service/internal/adapters/status"
	"waypoint-route-service/internal/config"
	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/platform/db"
	"waypoint-route-service/internal/ports"
	"waypoint-route-service/internal/solver"

	"github.com/redis/go-redis/v9"
)

// NewCalculator builds a distance-matrix calculator from optimizer settings.
func NewCalculator(cfg config.OptimizerConfig) *distmatrix.Calculator {
	opts := []distmatrix.Option{distmatrix.WithMemoryBudget(cfg.MemoryBudgetBytes)}
	if cfg.TileSize > 0 {
		opts = append(opts, distmatrix.WithTileSize(cfg.TileSize))
	}
	return distmatrix.NewCalculator(opts...)
}

// NewSolver builds a solver whose primary strategy runs in a worker process.
// The binary must call solver.MaybeRunWorker at the top of main.
func NewSolver(cfg config.OptimizerConfig) (*solver.Solver, error) {
	var opts []solver.ProcessOption
	if fields := strings.Fields(cfg.WorkerCommand); len(fields) > 0 {
		opts = append(opts, solver.WithCommand(fields[0], fields[1:]...))
	}
	ex, err := solver.NewProcessExecutor(opts...)
	if err != nil {
		return nil, fmt.Errorf("new solver: %w", err)
	}
	return solver.NewSolver(ex, cfg.TSPTimeout), nil
}

// Stores bundles the storage adapters and the resources behind them.
type Stores struct {
	DB       *sql.DB
	Dialect  db.Dialect
	Repo     ports.WaypointRepository
	Statuses ports.StatusStore

	redis *redis.Client
}

// OpenStores opens the SQL database, ensures the schema and selects the
// status backend: Redis when an address is configured, SQL otherwise.
func OpenStores(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	dialect := db.Dialect(cfg.Driver)
	conn, err := db.OpenDialect(dialect, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	if err := repositories.InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open stores: %w", err)
	}

	s := &Stores{
		DB:       conn,
		Dialect:  dialect,
		Repo:     repositories.NewSQLWaypointRepository(conn, dialect),
		Statuses: status.NewSQLStore(conn, dialect),
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("open stores: ping redis %s: %w", cfg.RedisAddr, err)
		}
		s.redis = client
		s.Statuses = status.NewRedisStore(client)
	}

	return s, nil
}

func (s *Stores) Close() error {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	return s.DB.Close()
}

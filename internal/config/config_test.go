package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"waypoint-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_PATH", "PORT", "DB_DRIVER", "DATABASE_URL", "DB_PATH", "REDIS_ADDR", "JUMP_RANGE", "TSP_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.Optimizer.JumpRange)
	assert.Equal(t, 30*time.Second, cfg.Optimizer.TSPTimeout)
	assert.Equal(t, "auto", cfg.Optimizer.DistanceMode)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/app.db", cfg.Store.DSN)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "routeopt.yaml")
	yml := `
optimizer:
  jump_range: 12.5
  tsp_timeout: 5s
  distance_mode: blocked
  tile_size: 200
server:
  port: "9000"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TSP_TIMEOUT", "750ms")
	t.Setenv("DATABASE_URL", "postgres://localhost/routes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12.5, cfg.Optimizer.JumpRange)
	assert.Equal(t, 750*time.Millisecond, cfg.Optimizer.TSPTimeout)
	assert.Equal(t, "blocked", cfg.Optimizer.DistanceMode)
	assert.Equal(t, 200, cfg.Optimizer.TileSize)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/routes", cfg.Store.DSN)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JUMP_RANGE", "far")

	_, err := Load()
	assert.Error(t, err)

	for _, v := range []string{"-5", "0", "NaN"} {
		t.Setenv("JUMP_RANGE", v)
		_, err = Load()
		assert.ErrorIs(t, err, domain.ErrInvalidRange, "JUMP_RANGE=%s", v)
	}

	t.Setenv("JUMP_RANGE", "")
	t.Setenv("TSP_TIMEOUT", "-1s")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadKeepsExplicitJumpRangeFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "routeopt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("optimizer:\n  jump_range: -3\n"), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, -3.0, cfg.Optimizer.JumpRange, "explicit values are not replaced by defaults")
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidRange)

	t.Setenv("CONFIG_PATH", path)
	_, err = Load()
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	t.Setenv("JUMP_RANGE", "7.5")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 7.5, cfg.Optimizer.JumpRange)
	assert.Equal(t, 30*time.Second, cfg.Optimizer.TSPTimeout)
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGet(t *testing.T) {
	t.Setenv("ROUTEOPT_TEST_KEY", "")
	assert.Equal(t, "fallback", Get("ROUTEOPT_TEST_KEY", "fallback"))
	t.Setenv("ROUTEOPT_TEST_KEY", "set")
	assert.Equal(t, "set", Get("ROUTEOPT_TEST_KEY", "fallback"))
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "mysql", DSN: "x"}}
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeopt.toml")
	doc := `
[optimizer]
jump_range = 33.0
tsp_timeout = "2s"
return_to_start = true

[store]
driver = "sqlite"
dsn = "routes.db"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 33.0, cfg.Optimizer.JumpRange)
	assert.Equal(t, 2*time.Second, cfg.Optimizer.TSPTimeout)
	assert.True(t, cfg.Optimizer.ReturnToStart)
	assert.Equal(t, "routes.db", cfg.Store.DSN)
	assert.Equal(t, "8080", cfg.Server.Port)
}

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"waypoint-route-service/internal/domain"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds everything the binaries need to wire the optimizer, storage and HTTP server.
type Config struct {
	Optimizer OptimizerConfig `yaml:"optimizer" toml:"optimizer"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
}

type OptimizerConfig struct {
	JumpRange         float64       `yaml:"jump_range" toml:"jump_range"`
	ReturnToStart     bool          `yaml:"return_to_start" toml:"return_to_start"`
	TSPTimeout        time.Duration `yaml:"tsp_timeout" toml:"tsp_timeout"`
	DistanceMode      string        `yaml:"distance_mode" toml:"distance_mode"`
	TileSize          int           `yaml:"tile_size" toml:"tile_size"`
	MemoryBudgetBytes int64         `yaml:"memory_budget_bytes" toml:"memory_budget_bytes"`
	// WorkerCommand overrides the executable used for the TSP worker process.
	// Empty means the running binary re-executes itself.
	WorkerCommand string `yaml:"worker_command" toml:"worker_command"`
}

type ServerConfig struct {
	Port string `yaml:"port" toml:"port"`
}

// StoreConfig selects the storage backends. Driver is "sqlite" or "pgx";
// a non-empty RedisAddr moves status persistence to Redis.
type StoreConfig struct {
	Driver    string `yaml:"driver" toml:"driver"`
	DSN       string `yaml:"dsn" toml:"dsn"`
	RedisAddr string `yaml:"redis_addr" toml:"redis_addr"`
}

// Default returns the settings used for every field a file or the
// environment leaves unset.
func Default() *Config {
	return &Config{
		Optimizer: OptimizerConfig{
			JumpRange:         50,
			TSPTimeout:        30 * time.Second,
			DistanceMode:      "auto",
			MemoryBudgetBytes: 2 << 30,
		},
		Server: ServerConfig{Port: "8080"},
		Store:  StoreConfig{Driver: "sqlite"},
	}
}

// finish fills the sqlite path once the driver is known.
func (c *Config) finish() {
	if c.Store.DSN == "" && c.Store.Driver == "sqlite" {
		c.Store.DSN = "data/app.db"
	}
}

// LoadConfigFile reads a YAML config file, or TOML when the name ends in
// .toml, over Default. Fields absent from the file keep their defaults;
// explicit values are kept as written and checked by Load and Validate.
func LoadConfigFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.decodeFile(path); err != nil {
		return nil, err
	}
	cfg.finish()
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config %q: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("load config %q: parse toml: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("load config %q: parse yaml: %w", path, err)
	}
	return nil
}

// Load starts from Default, reads CONFIG_PATH when set, then applies
// environment overrides. Optimizer settings are validated before returning.
func Load() (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.finish()

	if err := cfg.Optimizer.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = Get("PORT", c.Server.Port)
	c.Store.Driver = Get("DB_DRIVER", c.Store.Driver)
	c.Store.RedisAddr = Get("REDIS_ADDR", c.Store.RedisAddr)

	// DATABASE_URL wins over DB_PATH, matching the postgres-first dbtool.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Store.DSN = v
		if os.Getenv("DB_DRIVER") == "" {
			c.Store.Driver = "pgx"
		}
	} else if v := os.Getenv("DB_PATH"); v != "" {
		c.Store.DSN = v
	}

	if v := os.Getenv("JUMP_RANGE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: JUMP_RANGE: %w", err)
		}
		c.Optimizer.JumpRange = r
	}
	if v := os.Getenv("TSP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: TSP_TIMEOUT: %w", err)
		}
		c.Optimizer.TSPTimeout = d
	}
	return nil
}

// Validate rejects optimizer settings no run could use.
func (o OptimizerConfig) Validate() error {
	if math.IsNaN(o.JumpRange) || math.IsInf(o.JumpRange, 0) || o.JumpRange <= 0 {
		return fmt.Errorf("config: jump_range: %w: %v", domain.ErrInvalidRange, o.JumpRange)
	}
	if o.TSPTimeout <= 0 {
		return fmt.Errorf("config: tsp_timeout must be positive, got %s", o.TSPTimeout)
	}
	if o.MemoryBudgetBytes <= 0 {
		return fmt.Errorf("config: memory_budget_bytes must be positive, got %d", o.MemoryBudgetBytes)
	}
	if o.TileSize < 0 {
		return fmt.Errorf("config: tile_size must not be negative, got %d", o.TileSize)
	}
	return nil
}

// Validate reports settings that cannot start a server.
func (c *Config) Validate() error {
	if err := c.Optimizer.Validate(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return errors.New("config: store dsn is required")
	}
	return nil
}

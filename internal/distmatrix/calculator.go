package distmatrix

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime"
	"strings"

	"waypoint-route-service/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Mode selects the computation strategy.
type Mode int

const (
	Auto Mode = iota
	Direct
	Broadcast
	Blocked
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Direct:
		return "direct"
	case Broadcast:
		return "broadcast"
	case Blocked:
		return "blocked"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the names produced by Mode.String, case-insensitively.
// "chunked" is accepted as an alias for blocked.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "direct":
		return Direct, nil
	case "broadcast":
		return Broadcast, nil
	case "blocked", "chunked":
		return Blocked, nil
	default:
		return Auto, fmt.Errorf("parse distance mode: unknown mode %q", s)
	}
}

const (
	// DefaultDirectLimit is the largest N computed with the direct method under Auto.
	DefaultDirectLimit = 2000
	// DefaultMemoryBudget bounds the estimated N²×4 byte working set of Broadcast.
	DefaultMemoryBudget int64 = 2 << 30

	tileBudgetBytes = 250 << 20
	// Temporary arrays per tile pair: one per coordinate axis.
	tileUpperBoundFactor = 3
	minTileSize          = 100
	maxTileSize          = 800
	bytesPerEntry        = 4
)

// ProgressFunc receives fractional completion in [0,1].
type ProgressFunc func(fraction float64)

type strategyFunc func(ctx context.Context, coords domain.CoordinateSet, m *Matrix, progress ProgressFunc) error

// Calculator computes distance matrices. The zero value is not usable; use
// NewCalculator. A Calculator holds no per-call state and is safe to reuse.
type Calculator struct {
	directLimit  int
	memoryBudget int64
	tileSize     int
	workers      int
	strategies   map[Mode]strategyFunc
}

// Option customises a Calculator.
type Option func(*Calculator)

// WithDirectLimit sets the Auto threshold for the direct method.
func WithDirectLimit(n int) Option { return func(c *Calculator) { c.directLimit = n } }

// WithMemoryBudget sets the Auto threshold (bytes) for the broadcast method.
func WithMemoryBudget(bytes int64) Option { return func(c *Calculator) { c.memoryBudget = bytes } }

// WithTileSize pins the blocked tile edge instead of deriving it from the tile budget.
func WithTileSize(n int) Option { return func(c *Calculator) { c.tileSize = n } }

// WithWorkers bounds broadcast concurrency. Default: GOMAXPROCS.
func WithWorkers(n int) Option { return func(c *Calculator) { c.workers = n } }

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		directLimit:  DefaultDirectLimit,
		memoryBudget: DefaultMemoryBudget,
		workers:      runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	c.strategies = map[Mode]strategyFunc{
		Direct:    c.direct,
		Broadcast: c.broadcast,
		Blocked:   c.blocked,
	}
	return c
}

// Select returns the strategy Auto would use for n points.
func (c *Calculator) Select(n int) Mode {
	if n <= c.directLimit {
		return Direct
	}
	if int64(n)*int64(n)*bytesPerEntry <= c.memoryBudget {
		return Broadcast
	}
	return Blocked
}

// TileSize returns the blocked tile edge.
func (c *Calculator) TileSize() int {
	if c.tileSize > 0 {
		return c.tileSize
	}
	ts := int(math.Sqrt(float64(tileBudgetBytes) / float64(bytesPerEntry*tileUpperBoundFactor)))
	return max(minTileSize, min(maxTileSize, ts))
}

// Compute returns the distance matrix for coords and the strategy actually used.
//
// Cancellation is only observed by the blocked strategy, between tiles, and
// surfaces as domain.ErrCancelled. Any other failure of the broadcast or
// blocked strategies degrades to the direct method.
func (c *Calculator) Compute(
	ctx context.Context,
	coords domain.CoordinateSet,
	mode Mode,
	progress ProgressFunc,
) (*Matrix, Mode, error) {
	if progress == nil {
		progress = func(float64) {}
	}

	n := len(coords)
	if mode == Auto {
		mode = c.Select(n)
	}

	for i, p := range coords {
		if !p.InRange() {
			return nil, mode, fmt.Errorf("compute distance matrix: %w: point %d", domain.ErrInvalidCoordinates, i)
		}
	}

	strategy, ok := c.strategies[mode]
	if !ok {
		return nil, mode, fmt.Errorf("compute distance matrix: unsupported mode %s", mode)
	}

	m, err := New(n)
	if err != nil {
		return nil, mode, fmt.Errorf("compute distance matrix: %w", err)
	}

	err = runChecked(ctx, strategy, coords, m, progress)
	if err == nil {
		return m, mode, nil
	}
	if errors.Is(err, domain.ErrCancelled) {
		return nil, mode, err
	}
	if mode == Direct {
		return nil, mode, fmt.Errorf("compute distance matrix: direct: %w", err)
	}

	log.Printf("op=distmatrix.compute n=%d strategy=%s fallback=direct err=%v", n, mode, err)

	m, err = New(n)
	if err != nil {
		return nil, Direct, fmt.Errorf("compute distance matrix: %w", err)
	}
	if err := runChecked(ctx, c.direct, coords, m, progress); err != nil {
		return nil, Direct, fmt.Errorf("compute distance matrix: direct fallback: %w", err)
	}
	return m, Direct, nil
}

// runChecked runs a strategy and only accepts a result that passes Validate.
func runChecked(ctx context.Context, s strategyFunc, coords domain.CoordinateSet, m *Matrix, progress ProgressFunc) error {
	if err := runGuarded(ctx, s, coords, m, progress); err != nil {
		return err
	}
	m.zeroDiagonal()
	return m.Validate()
}

// runGuarded turns a panic inside a strategy into an error so the caller can degrade.
func runGuarded(
	ctx context.Context,
	fn strategyFunc,
	coords domain.CoordinateSet,
	m *Matrix,
	progress ProgressFunc,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panic: %v", r)
		}
	}()
	return fn(ctx, coords, m, progress)
}

func dist32(a, b domain.Point3) float32 {
	return float32(a.DistanceTo(b))
}

// direct computes the upper triangle pairwise and mirrors it.
//
// Complexity: O(n²) time, no extra memory.
func (c *Calculator) direct(_ context.Context, coords domain.CoordinateSet, m *Matrix, _ ProgressFunc) error {
	n := len(coords)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.setPair(i, j, dist32(coords[i], coords[j]))
		}
	}
	return nil
}

// broadcast fills every row in one pass over the full matrix. Rows are
// computed concurrently; each goroutine owns a disjoint row so no locking is needed.
func (c *Calculator) broadcast(_ context.Context, coords domain.CoordinateSet, m *Matrix, _ ProgressFunc) error {
	n := len(coords)

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			row := m.Row(i)
			if len(row) != n {
				return fmt.Errorf("broadcast: row %d has length %d, want %d", i, len(row), n)
			}
			p := coords[i]
			for j := 0; j < n; j++ {
				row[j] = dist32(p, coords[j])
			}
			return nil
		})
	}
	return g.Wait()
}

// blocked processes square tiles (bi <= bj) sequentially, mirroring each tile
// into the lower half. ctx is checked before every tile.
func (c *Calculator) blocked(ctx context.Context, coords domain.CoordinateSet, m *Matrix, progress ProgressFunc) error {
	n := len(coords)
	ts := c.TileSize()
	nb := (n + ts - 1) / ts
	total := nb * (nb + 1) / 2
	done := 0

	for bi := 0; bi < nb; bi++ {
		r0, r1 := bi*ts, min((bi+1)*ts, n)
		for bj := bi; bj < nb; bj++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("blocked distance computation stopped after %d/%d tiles: %w", done, total, domain.ErrCancelled)
			}

			c0, c1 := bj*ts, min((bj+1)*ts, n)
			for i := r0; i < r1; i++ {
				start := c0
				if bi == bj {
					start = i + 1
				}
				for j := start; j < c1; j++ {
					m.setPair(i, j, dist32(coords[i], coords[j]))
				}
			}

			done++
			progress(float64(done) / float64(total))
		}
	}
	return nil
}

package solver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"waypoint-route-service/internal/distmatrix"
)

// DefaultTimeout is the wall-clock budget of the primary strategy.
const DefaultTimeout = 30 * time.Second

// Strategy names the method that produced a Solution.
type Strategy string

const (
	StrategyTrivial         Strategy = "trivial"
	StrategyPrimary         Strategy = "local_search"
	StrategyNearestNeighbor Strategy = "nearest_neighbor"
)

// DegradeReason explains why the nearest-neighbor fallback was used.
type DegradeReason string

const (
	DegradedTimeout DegradeReason = "timeout"
	DegradedError   DegradeReason = "error"
)

// Degradation is informational: the run still succeeded, but with the
// fallback tour. Cause carries the primary strategy's error.
type Degradation struct {
	Reason DegradeReason
	Cause  error
}

func (d *Degradation) String() string {
	return fmt.Sprintf("solver degraded: reason=%s cause=%v", d.Reason, d.Cause)
}

// Solution is a visiting order over the matrix indices.
type Solution struct {
	Permutation []int
	Elapsed     time.Duration
	Strategy    Strategy
	Degraded    *Degradation
}

// Solver runs the primary strategy under a hard timeout and falls back to
// nearest neighbor. It holds no per-call state.
type Solver struct {
	executor Executor
	timeout  time.Duration
}

func NewSolver(executor Executor, timeout time.Duration) *Solver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Solver{executor: executor, timeout: timeout}
}

// Timeout returns the primary strategy budget.
func (s *Solver) Timeout() time.Duration { return s.timeout }

// Solve returns a valid permutation of 0..m.N()-1. It never fails: timeouts,
// executor errors and invalid primary results all fall back to NearestNeighbor.
//
// Cancellation of ctx is deliberately not propagated to the executor; once
// the worker starts only the solver timeout ends it. ctx values (request ids)
// are kept.
func (s *Solver) Solve(ctx context.Context, m *distmatrix.Matrix) Solution {
	n := m.N()
	if n <= 1 {
		return Solution{Permutation: Identity(n), Strategy: StrategyTrivial}
	}

	start := time.Now()

	perm, err := s.runPrimary(ctx, m)
	if err == nil {
		return Solution{
			Permutation: perm,
			Elapsed:     time.Since(start),
			Strategy:    StrategyPrimary,
		}
	}

	reason := DegradedError
	if errors.Is(err, context.DeadlineExceeded) {
		reason = DegradedTimeout
	}
	log.Printf("op=tsp.solve n=%d strategy=%s reason=%s timeout=%s err=%v",
		n, StrategyNearestNeighbor, reason, s.timeout, err)

	return Solution{
		Permutation: NearestNeighbor(m),
		Elapsed:     time.Since(start),
		Strategy:    StrategyNearestNeighbor,
		Degraded:    &Degradation{Reason: reason, Cause: err},
	}
}

func (s *Solver) runPrimary(ctx context.Context, m *distmatrix.Matrix) ([]int, error) {
	if s.executor == nil {
		return nil, errors.New("no executor configured")
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	perm, err := s.executor.Run(ctx, m)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, err
	}
	if err := ValidatePermutation(perm, m.N()); err != nil {
		return nil, fmt.Errorf("primary result rejected: %w", err)
	}
	return perm, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/platform/obs"
	"waypoint-route-service/internal/solver"

	"github.com/google/uuid"
)

// Progress stage names.
const (
	StageDistanceMatrix     = "distance_matrix"
	StageDistanceMatrixDone = "distance_matrix_done"
	StageTSPStart           = "tsp_start"
	StageTSPDone            = "tsp_done"
)

// NoFraction marks a progress report without a completion fraction.
const NoFraction = -1.0

// ProgressFunc receives coarse stage updates. fraction is in [0,1], or
// NoFraction when the stage has no measurable completion.
type ProgressFunc func(stage string, fraction float64)

// State of an optimization run.
type State int32

const (
	StateIdle State = iota
	StateGrouping
	StateComputingDistances
	StateSolving
	StateAssembling
	StateDone
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGrouping:
		return "grouping"
	case StateComputingDistances:
		return "computing_distances"
	case StateSolving:
		return "solving"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Stats holds per-stage timings of one run as plain data.
type Stats struct {
	Waypoints        int
	Grouping         time.Duration
	DistanceMatrix   time.Duration
	Solve            time.Duration
	Assemble         time.Duration
	Total            time.Duration
	DistanceStrategy distmatrix.Mode
	SolveStrategy    solver.Strategy
}

type OptimizeRequest struct {
	Table         domain.Table
	StartSystem   string
	JumpRange     float64
	ReturnToStart bool
	DistanceMode  distmatrix.Mode
}

type Result struct {
	RunID           string
	// StartSystem is the trimmed requested start, empty when none was asked for.
	StartSystem     string
	Route           domain.Route
	Stats           Stats
	Group           GroupStats
	FixedStartFound bool
	// StartSuggestion is a near match for an unknown StartSystem, if any.
	StartSuggestion string
	Degraded        *solver.Degradation
}

// Optimizer coordinates grouping, distance computation, solving and route
// assembly. It is owned by the caller; State reports the stage of the most
// recent Optimize call.
type Optimizer struct {
	calc   *distmatrix.Calculator
	solver *solver.Solver
	state  atomic.Int32
}

func NewOptimizer(calc *distmatrix.Calculator, s *solver.Solver) *Optimizer {
	return &Optimizer{calc: calc, solver: s}
}

// State returns the current or final state of the last run.
func (o *Optimizer) State() State { return State(o.state.Load()) }

func (o *Optimizer) setState(s State) { o.state.Store(int32(s)) }

// Optimize runs one optimization pass.
//
// It fails fast with domain.ErrInvalidRange, *domain.SchemaError or
// domain.ErrTooFewWaypoints, and returns domain.ErrCancelled when ctx is
// cancelled during blocked distance computation or right before solving.
// A degraded solver run is still a success; see Result.Degraded.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest, progress ProgressFunc) (_ *Result, err error) {
	runID := uuid.NewString()
	if obs.RequestID(ctx) == "" {
		ctx = obs.WithRequestID(ctx, runID)
	}
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	if progress == nil {
		progress = func(string, float64) {}
	}

	o.setState(StateIdle)
	defer func() {
		switch {
		case err == nil:
			o.setState(StateDone)
		case errors.Is(err, domain.ErrCancelled):
			o.setState(StateCancelled)
		default:
			o.setState(StateFailed)
		}
	}()

	if err := ValidateJumpRange(req.JumpRange); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	started := time.Now()
	res := &Result{RunID: runID, StartSystem: strings.TrimSpace(req.StartSystem)}

	// Grouping.
	o.setState(StateGrouping)
	stageStart := time.Now()
	grouped, groupStats, err := GroupSystems(req.Table)
	if err != nil {
		return nil, fmt.Errorf("optimize: group systems: %w", err)
	}
	res.Group = groupStats
	res.Stats.Grouping = time.Since(stageStart)

	if len(grouped) < 2 {
		return nil, fmt.Errorf("optimize: %w: %d usable waypoints, need at least 2", domain.ErrTooFewWaypoints, len(grouped))
	}
	res.Stats.Waypoints = len(grouped)

	start, rest, found := SplitFixedStart(grouped, req.StartSystem)
	res.FixedStartFound = found
	if !found && res.StartSystem != "" {
		res.StartSuggestion, _ = SuggestSystem(grouped, res.StartSystem)
		log.Printf("req_id=%s op=optimizer.fixed_start start=%q found=false suggest=%q",
			obs.RequestID(ctx), res.StartSystem, res.StartSuggestion)
	}

	coords, err := domain.NewCoordinateSet(rest)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	// Distances.
	o.setState(StateComputingDistances)
	stageStart = time.Now()
	progress(StageDistanceMatrix, 0)
	m, mode, err := o.calc.Compute(ctx, coords, req.DistanceMode, func(f float64) {
		progress(StageDistanceMatrix, f)
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: distance matrix: %w", err)
	}
	res.Stats.DistanceMatrix = time.Since(stageStart)
	res.Stats.DistanceStrategy = mode
	progress(StageDistanceMatrixDone, 1)

	// Last cancellation point: the solver worker cannot be interrupted by ctx.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("optimize: before solving: %w", domain.ErrCancelled)
	}

	// Solving.
	o.setState(StateSolving)
	progress(StageTSPStart, NoFraction)
	sol := o.solver.Solve(ctx, m)
	res.Stats.Solve = sol.Elapsed
	res.Stats.SolveStrategy = sol.Strategy
	res.Degraded = sol.Degraded
	if sol.Degraded != nil {
		log.Printf("req_id=%s op=optimizer.solve degraded=true reason=%s", obs.RequestID(ctx), sol.Degraded.Reason)
	}
	progress(StageTSPDone, 1)

	// Assembly.
	o.setState(StateAssembling)
	stageStart = time.Now()
	perm := sol.Permutation
	if start != nil {
		if perm, err = OrientFromStart(rest, perm, *start, req.ReturnToStart); err != nil {
			return nil, fmt.Errorf("optimize: %w", err)
		}
	}
	route, err := AssembleRoute(rest, perm, start, req.JumpRange, req.ReturnToStart)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	res.Route = route
	res.Stats.Assemble = time.Since(stageStart)
	res.Stats.Total = time.Since(started)

	return res, nil
}

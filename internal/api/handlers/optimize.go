package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"waypoint-route-service/internal/adapters/tabular"
	"waypoint-route-service/internal/api/dto"
	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/platform/obs"
	"waypoint-route-service/internal/ports"
	"waypoint-route-service/internal/services"
	"waypoint-route-service/internal/solver"

	"github.com/go-chi/chi/v5"
)

// OptimizeDefaults fill request fields the client leaves out.
type OptimizeDefaults struct {
	JumpRange     float64
	ReturnToStart bool
	DistanceMode  distmatrix.Mode
}

// OptimizeHandler runs route optimizations. Each request gets its own
// Optimizer; the calculator and solver are shared and stateless.
type OptimizeHandler struct {
	Calc     *distmatrix.Calculator
	Solver   *solver.Solver
	Repo     ports.WaypointRepository
	Store    ports.StatusStore
	Defaults OptimizeDefaults

	busy inflight
}

// Optimize handles POST /optimize with inline records. Nothing is persisted.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(bytes.TrimSpace(req.Records)) == 0 {
		writeError(w, r, http.StatusBadRequest, "records are required")
		return
	}

	table, err := tabular.ReadJSONRecords(bytes.NewReader(req.Records))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	svcReq, err := h.serviceRequest(req, table)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.run(r.Context(), svcReq)
	if err != nil {
		writeDomainError(w, r, "optimize", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(res, ""))
}

// OptimizeSession handles POST /sessions/{session}/optimize over stored rows.
// Stored statuses are carried onto the new route; at most one run per session
// is active at a time.
func (h *OptimizeHandler) OptimizeSession(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(chi.URLParam(r, "session"))
	if session == "" {
		writeError(w, r, http.StatusBadRequest, "session is required")
		return
	}

	var req dto.OptimizeRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if !h.busy.acquire(session) {
		writeError(w, r, http.StatusConflict, fmt.Sprintf("session %q already has an optimization running", session))
		return
	}
	defer h.busy.release(session)

	table, err := h.Repo.ListRows(r.Context(), session)
	if err != nil {
		writeDomainError(w, r, "optimize_session.list_rows", err)
		return
	}

	svcReq, err := h.serviceRequest(req, table)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.run(r.Context(), svcReq)
	if err != nil {
		writeDomainError(w, r, "optimize_session", err)
		return
	}

	if err := services.SyncStatuses(r.Context(), h.Store, session, &res.Route); err != nil {
		writeDomainError(w, r, "optimize_session.sync_statuses", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(res, session))
}

func (h *OptimizeHandler) serviceRequest(req dto.OptimizeRequest, table domain.Table) (services.OptimizeRequest, error) {
	out := services.OptimizeRequest{
		Table:         table,
		StartSystem:   req.StartSystem,
		JumpRange:     h.Defaults.JumpRange,
		ReturnToStart: h.Defaults.ReturnToStart,
		DistanceMode:  h.Defaults.DistanceMode,
	}
	if req.JumpRange != nil {
		out.JumpRange = *req.JumpRange
	}
	if req.ReturnToStart != nil {
		out.ReturnToStart = *req.ReturnToStart
	}
	if req.DistanceMode != "" {
		mode, err := distmatrix.ParseMode(req.DistanceMode)
		if err != nil {
			return services.OptimizeRequest{}, err
		}
		out.DistanceMode = mode
	}
	return out, nil
}

func (h *OptimizeHandler) run(ctx context.Context, req services.OptimizeRequest) (*services.Result, error) {
	opt := services.NewOptimizer(h.Calc, h.Solver)
	reqID := obs.RequestID(ctx)

	return opt.Optimize(ctx, req, func(stage string, fraction float64) {
		// Blocked computation reports every tile; only stage boundaries are logged.
		if fraction == services.NoFraction || fraction == 0 || fraction == 1 {
			log.Printf("req_id=%s op=optimize.progress stage=%s", reqID, stage)
		}
	})
}

func toRouteResponse(res *services.Result, session string) dto.RouteResponse {
	route := res.Route
	out := dto.RouteResponse{
		RunID:         res.RunID,
		Session:       session,
		Waypoints:     make([]dto.WaypointResponse, 0, len(route.Waypoints)),
		TotalDistance: route.TotalDistance,
		TotalJumps:    route.TotalJumps,
		JumpRange:     route.JumpRange,
		Stats: dto.StatsResponse{
			Waypoints:          res.Stats.Waypoints,
			GroupingMS:         res.Stats.Grouping.Milliseconds(),
			DistanceMatrixMS:   res.Stats.DistanceMatrix.Milliseconds(),
			SolveMS:            res.Stats.Solve.Milliseconds(),
			AssembleMS:         res.Stats.Assemble.Milliseconds(),
			TotalMS:            res.Stats.Total.Milliseconds(),
			DistanceStrategy:   res.Stats.DistanceStrategy.String(),
			SolveStrategy:      string(res.Stats.SolveStrategy),
			SkippedRows:        res.Group.SkippedRows,
			SubTargetColumn:    res.Group.SubTargetColumn,
			FixedStartNotFound: res.StartSystem != "" && !res.FixedStartFound,
			StartSuggestion:    res.StartSuggestion,
		},
	}

	for i, wp := range route.Waypoints {
		item := dto.WaypointResponse{
			Name:         wp.Name,
			X:            wp.Coords.X,
			Y:            wp.Coords.Y,
			Z:            wp.Coords.Z,
			Payload:      wp.Payload,
			PayloadCount: wp.PayloadCount,
			Status:       string(wp.Status),
		}
		if i > 0 {
			item.LegDistance = route.SegmentDistances[i-1]
			item.LegJumps = services.JumpsFor(item.LegDistance, route.JumpRange)
		}
		out.Waypoints = append(out.Waypoints, item)
	}

	if route.ReturnToStart && len(route.SegmentDistances) == len(route.Waypoints) && len(route.Waypoints) > 0 {
		closing := route.SegmentDistances[len(route.SegmentDistances)-1]
		out.ClosingLeg = &closing
	}

	if res.Degraded != nil {
		d := &dto.DegradedResponse{Reason: string(res.Degraded.Reason)}
		if res.Degraded.Cause != nil {
			d.Cause = res.Degraded.Cause.Error()
		}
		out.Degraded = d
	}

	return out
}

package dto

import "encoding/json"

// OptimizeRequest is the body of POST /optimize and POST /sessions/{session}/optimize.
// Records is required on /optimize and ignored for sessions, whose rows come
// from storage.
type OptimizeRequest struct {
	Records       json.RawMessage `json:"records,omitempty"`
	StartSystem   string          `json:"start_system"`
	JumpRange     *float64        `json:"jump_range"`
	ReturnToStart *bool           `json:"return_to_start"`
	DistanceMode  string          `json:"distance_mode"`
}

type WaypointResponse struct {
	Name         string   `json:"name"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Z            float64  `json:"z"`
	Payload      []string `json:"payload"`
	PayloadCount int      `json:"payload_count"`
	Status       string   `json:"status"`
	// Distance of the leg arriving at this waypoint; zero for the first one.
	LegDistance float64 `json:"leg_distance"`
	LegJumps    int64   `json:"leg_jumps"`
}

type StatsResponse struct {
	Waypoints          int    `json:"waypoints"`
	GroupingMS         int64  `json:"grouping_ms"`
	DistanceMatrixMS   int64  `json:"distance_matrix_ms"`
	SolveMS            int64  `json:"solve_ms"`
	AssembleMS         int64  `json:"assemble_ms"`
	TotalMS            int64  `json:"total_ms"`
	DistanceStrategy   string `json:"distance_strategy"`
	SolveStrategy      string `json:"solve_strategy"`
	SkippedRows        int    `json:"skipped_rows"`
	SubTargetColumn    string `json:"sub_target_column,omitempty"`
	FixedStartNotFound bool   `json:"fixed_start_not_found,omitempty"`
	StartSuggestion    string `json:"start_suggestion,omitempty"`
}

type DegradedResponse struct {
	Reason string `json:"reason"`
	Cause  string `json:"cause"`
}

type RouteResponse struct {
	RunID         string             `json:"run_id"`
	Session       string             `json:"session,omitempty"`
	Waypoints     []WaypointResponse `json:"waypoints"`
	ClosingLeg    *float64           `json:"closing_leg,omitempty"`
	TotalDistance float64            `json:"total_distance"`
	TotalJumps    int64              `json:"total_jumps"`
	JumpRange     float64            `json:"jump_range"`
	Stats         StatsResponse      `json:"stats"`
	Degraded      *DegradedResponse  `json:"degraded,omitempty"`
}

package domain

import "fmt"

// Visiting status of a waypoint. Only external collaborators change it after
// an optimization pass; the optimizer itself never mutates it.
type Status string

const (
	StatusUnvisited Status = "Unvisited"
	StatusVisited   Status = "Visited"
	StatusSkipped   Status = "Skipped"
)

// Parse a status value as stored in status documents and exports.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnvisited, StatusVisited, StatusSkipped:
		return Status(s), nil
	default:
		return "", fmt.Errorf("parse status: unknown status %q", s)
	}
}

// A uniquely named point to visit (a star system) plus its sub-targets.
//
// Rows is the list of raw input row indices that were folded into this
// waypoint; exporters use it to emit the original rows in route order.
type Waypoint struct {
	Name         string
	Coords       Point3
	Payload      []string
	PayloadCount int
	Status       Status
	Rows         []int
}

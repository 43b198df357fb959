package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Required input columns are missing.
	ErrSchema = errors.New("schema error")
	// Jump range is not a positive finite number.
	ErrInvalidRange = errors.New("invalid jump range")
	// The caller aborted the run inside the cancellable window.
	ErrCancelled = errors.New("optimization cancelled")
	// Fewer than two usable waypoints remain after grouping.
	ErrTooFewWaypoints = errors.New("too few waypoints")
	// A stored session or waypoint does not exist.
	ErrNotFound = errors.New("not found")
	// Coordinates are non-finite or too large for a representable distance.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// SchemaError names every required column absent from an input table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

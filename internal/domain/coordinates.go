package domain

import (
	"fmt"
	"math"
)

// Immutable 3D coordinates in the same units as the input table (light years).
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// MaxCoordinate bounds the magnitude of a usable coordinate component. Any
// two points inside the bound are at most 2*sqrt(3)*MaxCoordinate apart,
// which still fits the float32 distance matrix.
const MaxCoordinate = 1e37

// Euclidean distance between two points. Components are scaled by the largest
// difference first so that squaring cannot overflow for finite inputs.
func (p Point3) DistanceTo(q Point3) float64 {
	dx := math.Abs(p.X - q.X)
	dy := math.Abs(p.Y - q.Y)
	dz := math.Abs(p.Z - q.Z)
	scale := math.Max(dx, math.Max(dy, dz))
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return scale
	}
	dx, dy, dz = dx/scale, dy/scale, dz/scale
	return scale * math.Sqrt(dx*dx+dy*dy+dz*dz)
}

// Report whether every component is a finite number.
func (p Point3) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

// InRange reports whether every component is finite and within MaxCoordinate.
func (p Point3) InRange() bool {
	return p.IsFinite() &&
		math.Abs(p.X) <= MaxCoordinate && math.Abs(p.Y) <= MaxCoordinate && math.Abs(p.Z) <= MaxCoordinate
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// CoordinateSet is the validated list of points handed to the distance stage.
// Index i always refers to the i-th waypoint of the optimization subset.
type CoordinateSet []Point3

// Build a CoordinateSet from waypoints, rejecting non-finite or out-of-range
// coordinates with ErrInvalidCoordinates.
func NewCoordinateSet(waypoints []Waypoint) (CoordinateSet, error) {
	out := make(CoordinateSet, 0, len(waypoints))
	for i, w := range waypoints {
		if !w.Coords.InRange() {
			return nil, fmt.Errorf("coordinate set: %w: waypoint %q at index %d", ErrInvalidCoordinates, w.Name, i)
		}
		out = append(out, w.Coords)
	}
	return out, nil
}

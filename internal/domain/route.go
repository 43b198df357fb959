package domain

// Represents an ordered visiting sequence over all waypoints.
//
// SegmentDistances[i] is the distance from Waypoints[i] to Waypoints[i+1].
// When ReturnToStart is set, one more segment closes the loop back to
// Waypoints[0]. A Route is immutable planning data.
type Route struct {
	Waypoints        []Waypoint
	SegmentDistances []float64
	TotalDistance    float64
	TotalJumps       int64
	JumpRange        float64
	ReturnToStart    bool
}

// Names returns waypoint names in route order.
func (r Route) Names() []string {
	out := make([]string, 0, len(r.Waypoints))
	for _, w := range r.Waypoints {
		out = append(out, w.Name)
	}
	return out
}

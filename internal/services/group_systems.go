package services

import (
	"log"
	"math"
	"strconv"
	"strings"

	"waypoint-route-service/internal/domain"
)

// Required input columns (case-sensitive).
const (
	ColumnSystemName = "System Name"
	ColumnX          = "X"
	ColumnY          = "Y"
	ColumnZ          = "Z"
)

// SubTargetColumns are the accepted names of the optional sub-target column,
// in priority order.
var SubTargetColumns = []string{"Body Name", "Body", "Planet", "Target"}

// GroupStats summarises a grouping pass.
type GroupStats struct {
	InputRows       int
	SkippedRows     int
	SubTargetRows   int
	SubTargetColumn string
}

// GroupSystems folds raw rows into one waypoint per distinct system name.
//
// Grouping is by the exact, case-sensitive name cell, so "Sol" and "Sol "
// are distinct systems; the first usable row fixes the coordinates and
// the order of first appearance is preserved. Non-null sub-targets are
// collected in input order. Rows with an empty name or unusable coordinates
// are skipped and counted. A table without the required columns fails with
// *domain.SchemaError before any row is read.
func GroupSystems(table domain.Table) ([]domain.Waypoint, GroupStats, error) {
	stats := GroupStats{InputRows: len(table.Rows)}

	required := []string{ColumnSystemName, ColumnX, ColumnY, ColumnZ}
	idx := make([]int, len(required))
	var missing []string
	for i, col := range required {
		idx[i] = table.ColumnIndex(col)
		if idx[i] < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &domain.SchemaError{Missing: missing}
	}
	nameCol, xCol, yCol, zCol := idx[0], idx[1], idx[2], idx[3]

	subCol := -1
	for _, alias := range SubTargetColumns {
		if i := table.ColumnIndex(alias); i >= 0 {
			subCol = i
			stats.SubTargetColumn = alias
			break
		}
	}

	waypoints := make([]domain.Waypoint, 0, len(table.Rows))
	byName := make(map[string]int, len(table.Rows))

	for r := range table.Rows {
		name := table.Cell(r, nameCol)
		if strings.TrimSpace(name) == "" {
			stats.SkippedRows++
			continue
		}

		coords, ok := parsePoint(table.Cell(r, xCol), table.Cell(r, yCol), table.Cell(r, zCol))
		if !ok {
			log.Printf("op=group_systems row=%d system=%q skipped=invalid_coordinates", r, name)
			stats.SkippedRows++
			continue
		}

		gi, seen := byName[name]
		if !seen {
			gi = len(waypoints)
			byName[name] = gi
			waypoints = append(waypoints, domain.Waypoint{
				Name:    name,
				Coords:  coords,
				Payload: []string{},
				Status:  domain.StatusUnvisited,
			})
		}

		w := &waypoints[gi]
		w.Rows = append(w.Rows, r)
		if subCol >= 0 {
			if sub, ok := subTarget(table.Cell(r, subCol)); ok {
				w.Payload = append(w.Payload, sub)
				stats.SubTargetRows++
			}
		}
		w.PayloadCount = len(w.Payload)
	}

	return waypoints, stats, nil
}

func parsePoint(xs, ys, zs string) (domain.Point3, bool) {
	var vals [3]float64
	for i, s := range [3]string{xs, ys, zs} {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.Abs(v) > domain.MaxCoordinate {
			return domain.Point3{}, false
		}
		vals[i] = v
	}
	return domain.Point3{X: vals[0], Y: vals[1], Z: vals[2]}, true
}

// subTarget treats blank cells and spreadsheet null markers as absent.
func subTarget(cell string) (string, bool) {
	s := strings.TrimSpace(cell)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return "", false
	}
	return s, true
}

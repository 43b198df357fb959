package services_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/services"
	"waypoint-route-service/internal/solver"
)

type row struct {
	name    string
	x, y, z float64
	body    string
}

func tableOf(rows ...row) domain.Table {
	t := domain.Table{Columns: []string{"System Name", "X", "Y", "Z", "Body Name"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.name,
			strconv.FormatFloat(r.x, 'f', -1, 64),
			strconv.FormatFloat(r.y, 'f', -1, 64),
			strconv.FormatFloat(r.z, 'f', -1, 64),
			r.body,
		})
	}
	return t
}

func squareTable() domain.Table {
	return tableOf(
		row{name: "A", x: 0, y: 0},
		row{name: "B", x: 10, y: 0},
		row{name: "C", x: 10, y: 10},
		row{name: "D", x: 0, y: 10},
	)
}

// inProcessExecutor runs the heuristic directly; good enough for tests that
// do not exercise the hard timeout.
func inProcessExecutor() solver.Executor {
	return solver.ExecutorFunc(func(_ context.Context, m *distmatrix.Matrix) ([]int, error) {
		return solver.Heuristic(m), nil
	})
}

func newOptimizer(ex solver.Executor, opts ...distmatrix.Option) *services.Optimizer {
	return services.NewOptimizer(distmatrix.NewCalculator(opts...), solver.NewSolver(ex, 5*time.Second))
}

type progressEvent struct {
	stage    string
	fraction float64
}

type progressLog []progressEvent

func (p *progressLog) record(stage string, fraction float64) {
	*p = append(*p, progressEvent{stage: stage, fraction: fraction})
}

func (p progressLog) stages() []string {
	var out []string
	for _, e := range p {
		if len(out) == 0 || out[len(out)-1] != e.stage {
			out = append(out, e.stage)
		}
	}
	return out
}

func gridTable(n int) domain.Table {
	rows := make([]row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, row{name: fmt.Sprintf("SYS-%04d", i), x: float64(i % 17), y: float64(i / 17), z: float64(i % 5)})
	}
	return tableOf(rows...)
}

func mustNames(t *testing.T, r domain.Route) []string {
	t.Helper()
	return r.Names()
}

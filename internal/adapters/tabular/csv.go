package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"waypoint-route-service/internal/domain"
)

// StatusColumn is appended to exported rows.
const StatusColumn = "Status"

// ReadCSV reads a header row followed by data rows. Rows may be ragged;
// short rows read as empty trailing cells.
func ReadCSV(r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, fmt.Errorf("read csv: %w: empty input", domain.ErrSchema)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("read csv: header: %w", err)
	}

	t := domain.Table{Columns: make([]string, len(header))}
	for i, h := range header {
		t.Columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("read csv: row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteRouteCSV writes every input row of table in route order, mirroring the
// input columns plus a Status column carrying the waypoint's status. Rows
// skipped during grouping do not appear.
func WriteRouteCSV(w io.Writer, table domain.Table, route domain.Route) error {
	columns := append([]string(nil), table.Columns...)
	statusCol := table.ColumnIndex(StatusColumn)
	if statusCol < 0 {
		statusCol = len(columns)
		columns = append(columns, StatusColumn)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write route csv: header: %w", err)
	}

	out := make([]string, len(columns))
	for _, wp := range route.Waypoints {
		status := wp.Status
		if status == "" {
			status = domain.StatusUnvisited
		}
		for _, r := range wp.Rows {
			for c := range out {
				out[c] = table.Cell(r, c)
			}
			out[statusCol] = string(status)
			if err := cw.Write(out); err != nil {
				return fmt.Errorf("write route csv: row %d: %w", r, err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write route csv: flush: %w", err)
	}
	return nil
}

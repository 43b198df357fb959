package domain

// Column-named tabular input as read from CSV or JSON.
// Every row has at most len(Columns) cells; missing trailing cells read as "".
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index of a column by exact (case-sensitive) name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns row[col] or "" when the row is short.
func (t Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

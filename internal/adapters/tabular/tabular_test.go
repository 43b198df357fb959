package tabular

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"waypoint-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "\ufeffSystem Name,X,Y,Z,Body Name\n" +
	"Sol,0,0,0,Earth\n" +
	"Alpha,4.3,0,0,\n" +
	"Sol,0,0,0,Mars\n" +
	"Short,1\n"

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"System Name", "X", "Y", "Z", "Body Name"}, table.Columns)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, "Mars", table.Cell(2, 4))
	assert.Equal(t, "", table.Cell(3, 2), "short rows read as empty cells")
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestWriteRouteCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	route := domain.Route{Waypoints: []domain.Waypoint{
		{Name: "Alpha", Rows: []int{1}, Status: domain.StatusVisited},
		{Name: "Sol", Rows: []int{0, 2}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRouteCSV(&buf, table, route))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"System Name", "X", "Y", "Z", "Body Name", "Status"},
		{"Alpha", "4.3", "0", "0", "", "Visited"},
		{"Sol", "0", "0", "0", "Earth", "Unvisited"},
		{"Sol", "0", "0", "0", "Mars", "Unvisited"},
	}, recs)
}

func TestWriteRouteCSVReusesStatusColumn(t *testing.T) {
	table := domain.Table{
		Columns: []string{"System Name", "Status", "X", "Y", "Z"},
		Rows:    [][]string{{"Sol", "Visited", "0", "0", "0"}},
	}
	route := domain.Route{Waypoints: []domain.Waypoint{{Name: "Sol", Rows: []int{0}, Status: domain.StatusSkipped}}}

	var buf bytes.Buffer
	require.NoError(t, WriteRouteCSV(&buf, table, route))
	assert.Equal(t, "System Name,Status,X,Y,Z\nSol,Skipped,0,0,0\n", buf.String())
}

func TestReadJSONRecords(t *testing.T) {
	in := `[
		{"System Name": "Sol", "X": 0, "Y": 0.5, "Z": -1, "Body": null},
		{"System Name": "Alpha", "X": "4.3", "Y": 0, "Z": 0, "Body": "b1", "Extra": true}
	]`
	table, err := ReadJSONRecords(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"System Name", "X", "Y", "Z", "Body", "Extra"}, table.Columns)
	assert.Equal(t, "0.5", table.Cell(0, 2))
	assert.Equal(t, "", table.Cell(0, 4))
	assert.Equal(t, "", table.Cell(0, 5))
	assert.Equal(t, "true", table.Cell(1, 5))
}

func TestReadJSONRecordsRejectsNested(t *testing.T) {
	_, err := ReadJSONRecords(strings.NewReader(`[{"X": {"a": 1}}]`))
	assert.Error(t, err)
}

func TestStatusDocumentRoundTrip(t *testing.T) {
	route := domain.Route{Waypoints: []domain.Waypoint{
		{Name: "Sol", Status: domain.StatusVisited},
		{Name: "Alpha"},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteStatusDocument(&buf, NewStatusDocument(route)))

	doc, err := ReadStatusDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, StatusDocument{"Sol": domain.StatusVisited, "Alpha": domain.StatusUnvisited}, doc)
}

func TestReadStatusDocumentRejectsUnknownStatus(t *testing.T) {
	_, err := ReadStatusDocument(strings.NewReader(`{"Sol": "Maybe"}`))
	assert.Error(t, err)
}

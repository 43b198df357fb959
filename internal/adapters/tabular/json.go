package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"waypoint-route-service/internal/domain"
)

// ReadJSONRecords reads an array of flat objects. Columns appear in order of
// first use across records; scalar values are kept as their text form and
// null reads as "".
func ReadJSONRecords(r io.Reader) (domain.Table, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.Table{}, fmt.Errorf("read json records: %w", err)
	}

	var t domain.Table
	colIdx := make(map[string]int)
	for i, msg := range raw {
		keys, vals, err := objectFields(msg)
		if err != nil {
			return domain.Table{}, fmt.Errorf("read json records: record %d: %w", i, err)
		}
		for _, k := range keys {
			if _, ok := colIdx[k]; !ok {
				colIdx[k] = len(t.Columns)
				t.Columns = append(t.Columns, k)
			}
		}
		row := make([]string, len(t.Columns))
		for j, k := range keys {
			row[colIdx[k]] = vals[j]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func objectFields(msg json.RawMessage) ([]string, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected object")
	}

	var keys, vals []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		var s string
		switch x := v.(type) {
		case nil:
		case string:
			s = x
		case json.Number:
			s = x.String()
		case bool:
			s = fmt.Sprint(x)
		default:
			return nil, nil, fmt.Errorf("field %q: nested values are not supported", key)
		}
		keys = append(keys, key)
		vals = append(vals, s)
	}
	return keys, vals, nil
}

// StatusDocument maps system names to their visiting status.
type StatusDocument map[string]domain.Status

// NewStatusDocument collects the statuses of route's waypoints; empty
// statuses are written as Unvisited.
func NewStatusDocument(route domain.Route) StatusDocument {
	doc := make(StatusDocument, len(route.Waypoints))
	for _, w := range route.Waypoints {
		s := w.Status
		if s == "" {
			s = domain.StatusUnvisited
		}
		doc[w.Name] = s
	}
	return doc
}

// WriteStatusDocument writes doc as an indented JSON object.
func WriteStatusDocument(w io.Writer, doc StatusDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write status document: %w", err)
	}
	return nil
}

// ReadStatusDocument parses and validates a status document.
func ReadStatusDocument(r io.Reader) (StatusDocument, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("read status document: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := make(StatusDocument, len(raw))
	for _, name := range names {
		s, err := domain.ParseStatus(raw[name])
		if err != nil {
			return nil, fmt.Errorf("read status document: system %q: %w", name, err)
		}
		doc[name] = s
	}
	return doc, nil
}

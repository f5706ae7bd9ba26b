package ingest

import (
	"encoding/csv"
	"io"

	"github.com/spec-kit/ticket-insights/pkg/util"
)

// RawTable holds a parsed CSV export before normalization: the header
// row plus every data row, untyped.
type RawTable struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// ReadCSV parses a CSV stream into a RawTable. Structural problems
// (ragged rows, bad quoting) surface as a single CSV_MALFORMED error;
// cell contents are never inspected here.
func ReadCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, util.NewMalformedInput("unable to parse CSV file", err)
	}
	if len(records) == 0 {
		return nil, util.NewMalformedInput("CSV file has no header row", nil)
	}

	table := &RawTable{
		Columns: records[0],
		Rows:    records[1:],
		index:   make(map[string]int, len(records[0])),
	}
	for i, col := range table.Columns {
		if _, exists := table.index[col]; !exists {
			table.index[col] = i
		}
	}
	return table, nil
}

// HasColumn reports whether the header contains the named column.
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell for a row and column name. Missing columns and
// short rows yield an empty string.
func (t *RawTable) Value(row []string, column string) string {
	idx, ok := t.index[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Package refdata loads the car and track reference tables and resolves
// telemetry codes to display names.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Candidate header names, tried in order. Only a key column and a display
// name column are required; everything else is optional and simply omitted
// when the source file lacks it.
var (
	keyColumns  = []string{"ID", "Code"}
	nameColumns = []string{"ShortName", "Name"}

	carOptionalColumns   = []string{"Maker", "Category"}
	trackOptionalColumns = []string{"Category", "Length", "NumCorners"}
)

// Row is one reference entry resolved by code. Attrs holds whichever optional
// columns the source table carried.
type Row struct {
	Code        string            `json:"code"`
	DisplayName string            `json:"display_name"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Unknown     bool              `json:"unknown,omitempty"`
}

// Label returns the display name, falling back to the raw code for unknown
// rows so callers never render an empty cell for a missing reference entry.
func (r Row) Label(kind string) string {
	if r.Unknown {
		return fmt.Sprintf("Unknown %s code: %s", kind, r.Code)
	}
	return r.DisplayName
}

// Table is a keyed reference collection (code -> Row). Tables are immutable
// after Parse; Reload swaps the whole table under a lock.
type Table struct {
	Kind string // "car" or "track"

	mu      sync.RWMutex
	rows    map[string]Row
	order   []string
	columns []string
}

// Lookup resolves a code to its row. Lookup is total: an unknown or empty
// code returns a sentinel row carrying the raw code, never an error.
func (t *Table) Lookup(code string) Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if row, ok := t.rows[code]; ok {
		return row
	}
	return Row{Code: code, Unknown: true}
}

// Columns returns the column names the source table actually provided, key
// and name columns first.
func (t *Table) Columns() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.columns...)
}

// Rows returns all rows in source order, for table previews.
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Row, 0, len(t.order))
	for _, code := range t.order {
		out = append(out, t.rows[code])
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Parse reads a CSV reference table from r. The header must contain a key
// column (ID/Code) and a display-name column (ShortName/Name); optional
// columns that are missing degrade by omission rather than failing.
func Parse(kind string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s table header: %w", kind, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	keyIdx, keyCol := findColumn(index, keyColumns)
	if keyIdx < 0 {
		return nil, fmt.Errorf("%s table has no key column (expected one of %v)", kind, keyColumns)
	}
	nameIdx, nameCol := findColumn(index, nameColumns)
	if nameIdx < 0 {
		return nil, fmt.Errorf("%s table has no display-name column (expected one of %v)", kind, nameColumns)
	}

	optional := carOptionalColumns
	if kind == "track" {
		optional = trackOptionalColumns
	}

	present := make(map[string]int)
	for _, col := range optional {
		if i, ok := index[col]; ok {
			present[col] = i
		}
	}

	table := &Table{
		Kind:    kind,
		rows:    make(map[string]Row),
		columns: []string{keyCol, nameCol},
	}
	optNames := make([]string, 0, len(present))
	for col := range present {
		optNames = append(optNames, col)
	}
	sort.Strings(optNames)
	table.columns = append(table.columns, optNames...)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s table row: %w", kind, err)
		}

		code := strings.TrimSpace(record[keyIdx])
		if code == "" {
			continue
		}

		row := Row{
			Code:        code,
			DisplayName: strings.TrimSpace(record[nameIdx]),
		}
		if len(present) > 0 {
			row.Attrs = make(map[string]string, len(present))
			for col, i := range present {
				if i < len(record) {
					row.Attrs[col] = strings.TrimSpace(record[i])
				}
			}
		}

		if _, seen := table.rows[code]; !seen {
			table.order = append(table.order, code)
		}
		table.rows[code] = row
	}

	if len(table.rows) == 0 {
		return nil, fmt.Errorf("%s table contains no rows", kind)
	}
	return table, nil
}

// replace swaps the table contents in place, used by Reload.
func (t *Table) replace(fresh *Table) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = fresh.rows
	t.order = fresh.order
	t.columns = fresh.columns
}

func findColumn(index map[string]int, candidates []string) (int, string) {
	for _, col := range candidates {
		if i, ok := index[col]; ok {
			return i, col
		}
	}
	return -1, ""
}

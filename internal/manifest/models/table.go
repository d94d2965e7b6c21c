package models

import (
	"strconv"
	"strings"
)

// Column names the converter understands. Every other column on the input is
// opaque and carried through unchanged.
const (
	ColTracking     = "Tracking Number"
	ColDescription  = "PRODUCT DESCRIPTION"
	ColHSCode       = "HSCODE"
	ColQuantity     = "TOTAL QTY"
	ColWeight       = "WEIGHT"
	ColDeclareValue = "TOTAL DECLARE VALUE"
)

// Row maps a column name to its cell value. A key absent from the map is a
// missing cell. Values are strings as read from the sheet, or float64/int once
// a pipeline stage has written a numeric result.
type Row map[string]any

// Table is the in-memory tabular form every pipeline stage consumes and
// produces. Columns carries the header order; Rows never contain keys outside
// Columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the cell rendered as a string. The second return is false
// when the cell is missing.
func (r Row) String(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	default:
		return "", false
	}
}

// Float returns the cell coerced to a number. Unparseable or missing cells
// report false, matching the convert-to-missing policy for bad numerics.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r[col]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// HasColumn reports whether the header contains the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends the named column to the header when absent.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Reorder moves the five key output columns to the end of the header, in a
// fixed order, keeping the relative order of everything else. Rows are
// untouched; only the header order changes.
func (t Table) Reorder() Table {
	keyOrder := []string{ColDescription, ColHSCode, ColQuantity, ColWeight, ColDeclareValue}
	key := make(map[string]bool, len(keyOrder))
	for _, c := range keyOrder {
		key[c] = true
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !key[c] {
			cols = append(cols, c)
		}
	}
	for _, c := range keyOrder {
		if t.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return Table{Columns: cols, Rows: t.Rows}
}

// SchemaError reports required input columns absent from the uploaded
// manifest. The conversion aborts before producing any rows.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required column(s): " + strings.Join(e.Missing, ", ")
}

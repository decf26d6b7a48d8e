package models

import "time"

// Canonical column names every normalized table should expose.
const (
	ColumnNaiveTimestamp  = "naive_timestamp"
	ColumnVariable        = "variable"
	ColumnValue           = "value"
	ColumnLastModifiedUTC = "last_modified_utc"
)

// CanonicalColumns lists the canonical names in output order.
var CanonicalColumns = []string{
	ColumnNaiveTimestamp,
	ColumnVariable,
	ColumnValue,
	ColumnLastModifiedUTC,
}

// DateLayout is the ISO-8601 calendar date format used in requests and partitions.
const DateLayout = "2006-01-02"

// Table is an ordered, column-named set of rows. Cells hold string, json.Number,
// time.Time, bool or nil values depending on the source format.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table exposes a column with this exact name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// RenameColumns renames columns found in mapping and leaves the others untouched.
func (t *Table) RenameColumns(mapping map[string]string) {
	for i, c := range t.Columns {
		if renamed, ok := mapping[c]; ok {
			t.Columns[i] = renamed
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell at row i for the named column and whether the column exists.
func (t *Table) Value(i int, column string) (any, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return nil, false
	}
	return t.Rows[i][idx], true
}

// FormatDate renders a requested date the way it appears in URLs and partitions.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

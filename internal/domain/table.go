package domain

import "strings"

// Table is a sheet of string cells with a header row. Readers leave cells
// untyped; the interim builder parses ids and dates itself.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table and normalizes its column names.
func NewTable(name string, columns []string, rows [][]string) *Table {
	t := &Table{Name: name, Columns: columns, Rows: rows}
	t.NormalizeColumns()
	return t
}

// NormalizeColumn trims surrounding whitespace and replaces internal spaces
// with underscores ("Employee ID " → "Employee_ID").
func NormalizeColumn(c string) string {
	return strings.ReplaceAll(strings.TrimSpace(c), " ", "_")
}

// NormalizeColumns rewrites every column name with NormalizeColumn. The first
// occurrence wins when two columns normalize to the same name.
func (t *Table) NormalizeColumns() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		n := NormalizeColumn(c)
		t.Columns[i] = n
		if _, dup := t.index[n]; !dup {
			t.index[n] = i
		}
	}
}

// Index returns the position of a normalized column, or -1.
func (t *Table) Index(col string) int {
	if t.index == nil {
		t.NormalizeColumns()
	}
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Has reports whether the column exists.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Require returns a MissingInputError naming the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return &MissingInputError{Table: t.Name, Column: c}
		}
	}
	return nil
}

// Value returns the trimmed cell at (row, col); absent cells are "".
func (t *Table) Value(row int, col string) string {
	i := t.Index(col)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// BlankRow reports whether every cell of the row is empty or whitespace.
func (t *Table) BlankRow(row int) bool {
	for _, c := range t.Rows[row] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package breakdown

import "slices"

// Row is one data row of a table. Line is the 1-based source line, or 0 for
// rows built in memory.
type Row struct {
	Line  int
	Cells map[string]string
}

// Get returns the cell for column and whether the row carries it.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Cells[column]
	return v, ok
}

// Table is an ordered set of rows sharing one header.
type Table struct {
	Columns []string
	Rows    []Row
}

// Has reports whether column is part of the header.
func (t Table) Has(column string) bool {
	return slices.Contains(t.Columns, column)
}

// Missing returns the subset of columns absent from the header, in the
// order given.
func (t Table) Missing(columns ...string) []string {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) && !slices.Contains(missing, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// RequireColumns fails with *MissingColumnError naming every absent column.
func (t Table) RequireColumns(columns ...string) error {
	if missing := t.Missing(columns...); len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

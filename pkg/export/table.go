package export

import "fmt"

// Column is one table column. Weight sets its share of the page width in PDF output;
// zero counts as 1.
type Column struct {
	Title  string
	Weight float64
}

// Table is positional tabular content: every row carries one cell per column.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Titles returns the column titles in order.
func (t Table) Titles() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Title
	}
	return out
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

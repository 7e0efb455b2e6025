package export

import "fmt"

// Dataset is a flat table: one header row plus string cells in header order.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Validate checks that every row matches the header width.
func (d Dataset) Validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("row %d has %d cells, expected %d", i+1, len(row), len(d.Headers))
		}
	}
	return nil
}

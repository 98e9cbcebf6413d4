// Package export renders tabular school data, section rosters mainly, into
// downloadable documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is an ordered set of labeled columns plus row values. Rows shorter
// than the column set render with trailing blanks.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// CSV renders the table as UTF-8 CSV, column labels first. The title is a
// PDF concern and is not written.
func CSV(t Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		copy(record, row)
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

package feature

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV encodes the table with a header row of column names followed by
// the label column, then one record per feature row.
func (t *Table) WriteCSV(w io.Writer) error {
	if err := t.Validate(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := append(append([]string(nil), t.Names...), LabelColumn)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Names)+1)
	for r, row := range t.Rows {
		for c, v := range row {
			record[c] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		record[len(record)-1] = t.Labels[r]
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

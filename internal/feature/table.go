// Package feature holds the tabular model shared by the texture and
// intensity extractors: ordered rows of named float columns with a trailing
// label, CSV encoding, and per-column standardization for combining feature
// sources ahead of a downstream classifier.
package feature

import (
	"fmt"
)

// LabelColumn is the name of the trailing label column in encoded output.
const LabelColumn = "label"

// Table is an ordered collection of feature rows. Row order is the sample
// processing order and is significant; the label column is always last in
// any encoded form.
type Table struct {
	Names  []string
	Rows   [][]float64
	Labels []string
}

// NewTable returns an empty table with the given column names.
func NewTable(names []string) *Table {
	return &Table{Names: append([]string(nil), names...)}
}

// NumRows returns the number of feature rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of feature columns, excluding the label.
func (t *Table) NumCols() int { return len(t.Names) }

// Append adds a feature row and its label. The row is copied. Errors when
// the value count does not match the column count.
func (t *Table) Append(values []float64, label string) error {
	if len(values) != len(t.Names) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Names))
	}
	t.Rows = append(t.Rows, append([]float64(nil), values...))
	t.Labels = append(t.Labels, label)
	return nil
}

// Column returns a copy of the values of column i across all rows.
func (t *Table) Column(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Validate checks the table's internal consistency: one label per row and
// every row as wide as the column list.
func (t *Table) Validate() error {
	if len(t.Rows) != len(t.Labels) {
		return fmt.Errorf("%d rows but %d labels", len(t.Rows), len(t.Labels))
	}
	for r, row := range t.Rows {
		if len(row) != len(t.Names) {
			return fmt.Errorf("row %d has %d values, table has %d columns", r, len(row), len(t.Names))
		}
	}
	return nil
}

// Combine standardizes the primary table's columns (zero mean, unit
// variance per column) and appends the secondary table's columns unscaled,
// keeping the primary labels. The two sources must agree row for row on
// count and label, and must not share column names.
func Combine(primary, secondary *Table) (*Table, error) {
	if err := primary.Validate(); err != nil {
		return nil, fmt.Errorf("primary table: %w", err)
	}
	if err := secondary.Validate(); err != nil {
		return nil, fmt.Errorf("secondary table: %w", err)
	}
	if primary.NumRows() != secondary.NumRows() {
		return nil, fmt.Errorf("row count mismatch: primary %d, secondary %d", primary.NumRows(), secondary.NumRows())
	}
	for r := range primary.Labels {
		if primary.Labels[r] != secondary.Labels[r] {
			return nil, fmt.Errorf("label mismatch at row %d: %q vs %q", r, primary.Labels[r], secondary.Labels[r])
		}
	}
	seen := make(map[string]struct{}, len(primary.Names))
	for _, n := range primary.Names {
		seen[n] = struct{}{}
	}
	for _, n := range secondary.Names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("column %q present in both sources", n)
		}
	}

	scaler, err := FitScaler(primary)
	if err != nil {
		return nil, err
	}

	out := NewTable(append(append([]string(nil), primary.Names...), secondary.Names...))
	for r := range primary.Rows {
		scaled, err := scaler.Transform(primary.Rows[r])
		if err != nil {
			return nil, err
		}
		row := append(scaled, secondary.Rows[r]...)
		if err := out.Append(row, primary.Labels[r]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

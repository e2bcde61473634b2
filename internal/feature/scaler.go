package feature

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature columns to zero mean and unit variance.
type Scaler struct {
	Mean   []float64
	StdDev []float64 // population standard deviation per column
}

// FitScaler computes per-column mean and population standard deviation over
// a table's rows. Errors on a table with no rows.
func FitScaler(t *Table) (*Scaler, error) {
	if t.NumRows() == 0 {
		return nil, errors.New("cannot fit scaler on an empty table")
	}
	s := &Scaler{
		Mean:   make([]float64, t.NumCols()),
		StdDev: make([]float64, t.NumCols()),
	}
	for c := 0; c < t.NumCols(); c++ {
		col := t.Column(c)
		s.Mean[c] = stat.Mean(col, nil)
		s.StdDev[c] = stat.PopStdDev(col, nil)
	}
	return s, nil
}

// Transform standardizes one row: (v - mean) / stddev per column. Columns
// with zero variance map to 0, so constant features drop out instead of
// dividing by zero.
func (s *Scaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.Mean) {
		return nil, fmt.Errorf("row has %d values, scaler fitted on %d columns", len(values), len(s.Mean))
	}
	out := make([]float64, len(values))
	for c, v := range values {
		if s.StdDev[c] == 0 {
			out[c] = 0
			continue
		}
		out[c] = (v - s.Mean[c]) / s.StdDev[c]
	}
	return out, nil
}

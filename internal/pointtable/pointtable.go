// Package pointtable models sparse ventilation point samples: tables of
// (x, y, z) coordinates with a scalar specific-ventilation measurement,
// optionally resolved per time frame, plus CSV loading for the batch tools.
package pointtable

import "math"

// Point is one row of a sample table. HasSV is false when the measurement
// is missing at that coordinate; SV is meaningless in that case.
type Point struct {
	X, Y, Z float64
	SV      float64
	HasSV   bool
	Frame   int
}

// Table is an ordered collection of measured points. HasFrame reports
// whether the source carried a Frame column; tables without it can only
// feed the static extraction path.
type Table struct {
	Points   []Point
	HasFrame bool
}

// Labeled pairs a point table with its classification label.
type Labeled struct {
	Table *Table
	Label string
}

// Len returns the number of points in the table.
func (t *Table) Len() int { return len(t.Points) }

// FilterFrame returns a new table holding only the points of the given
// frame index, preserving row order.
func (t *Table) FilterFrame(frame int) *Table {
	out := &Table{HasFrame: t.HasFrame}
	for _, p := range t.Points {
		if p.Frame == frame {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// MaxAbs returns the largest absolute coordinate per axis over all points.
// Zero for an empty table.
func (t *Table) MaxAbs() (x, y, z float64) {
	for _, p := range t.Points {
		x = math.Max(x, math.Abs(p.X))
		y = math.Max(y, math.Abs(p.Y))
		z = math.Max(z, math.Abs(p.Z))
	}
	return x, y, z
}

// Measured returns a new table holding only the points that carry a
// measurement, preserving row order.
func (t *Table) Measured() *Table {
	out := &Table{HasFrame: t.HasFrame}
	for _, p := range t.Points {
		if p.HasSV {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// SVValues returns the defined measurement values in row order. Points with
// a missing measurement are skipped.
func (t *Table) SVValues() []float64 {
	out := make([]float64, 0, len(t.Points))
	for _, p := range t.Points {
		if p.HasSV {
			out = append(out, p.SV)
		}
	}
	return out
}

// CoordMeans returns the per-axis coordinate means over all points.
// Zero for an empty table.
func (t *Table) CoordMeans() (x, y, z float64) {
	if len(t.Points) == 0 {
		return 0, 0, 0
	}
	for _, p := range t.Points {
		x += p.X
		y += p.Y
		z += p.Z
	}
	n := float64(len(t.Points))
	return x / n, y / n, z / n
}

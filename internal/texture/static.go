package texture

import (
	"fmt"

	"github.com/airway-data/ventscan/internal/feature"
	"github.com/airway-data/ventscan/internal/lbp"
	"github.com/airway-data/ventscan/internal/monitoring"
	"github.com/airway-data/ventscan/internal/pointtable"
	"github.com/airway-data/ventscan/internal/voxelgrid"
)

// StaticExtractor computes one normalized 64-bin texture histogram per
// sample. Every sample's grid shares the bounding size computed at
// construction, so cell (i,j,k) refers to the same physical location across
// the whole collection.
type StaticExtractor struct {
	samples []pointtable.Labeled
	size    voxelgrid.Size
	policy  voxelgrid.BoundsPolicy
}

// NewStaticExtractor sizes the shared grid from the full sample collection.
// The bounds policy controls what happens to points that fall outside it,
// which can only be negative coordinates given how the size is derived.
func NewStaticExtractor(samples []pointtable.Labeled, policy voxelgrid.BoundsPolicy) (*StaticExtractor, error) {
	size, err := voxelgrid.StaticSize(samples)
	if err != nil {
		return nil, err
	}
	return &StaticExtractor{samples: samples, size: size, policy: policy}, nil
}

// GridSize returns the shared grid size derived at construction.
func (e *StaticExtractor) GridSize() voxelgrid.Size {
	return e.size
}

// Extract processes samples in input order and returns the feature table:
// one normalized histogram row per sample, labels in the final column. Any
// sample whose grid has no valid voxels fails the whole extraction.
func (e *StaticExtractor) Extract() (*feature.Table, error) {
	tbl := feature.NewTable(HistogramColumns())
	ix := voxelgrid.AbsoluteIndexer{Size: e.size}
	for n, s := range e.samples {
		g, dropped, err := voxelgrid.Build(s.Table, ix, e.policy)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
		if dropped > 0 {
			monitoring.Logf("[StaticExtractor] sample %d: dropped %d out-of-bounds points", n, dropped)
		}
		row, err := lbp.ComputeHistogram(g).Normalize()
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
		if err := tbl.Append(row, s.Label); err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
	}
	return tbl, nil
}

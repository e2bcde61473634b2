package texture

import (
	"fmt"

	"github.com/airway-data/ventscan/internal/feature"
	"github.com/airway-data/ventscan/internal/lbp"
	"github.com/airway-data/ventscan/internal/monitoring"
	"github.com/airway-data/ventscan/internal/pointtable"
	"github.com/airway-data/ventscan/internal/voxelgrid"
)

// DefaultFrameCount is the number of time frames a temporal acquisition
// carries.
const DefaultFrameCount = 14

// TemporalExtractor computes per-frame texture histograms and concatenates
// them frame-major into one wide row per sample. Each frame gets its own
// frame-local grid, so per-frame coordinate sets may differ freely.
type TemporalExtractor struct {
	samples []pointtable.Labeled
	frames  int
	size    voxelgrid.Size
}

// NewTemporalExtractor prepares extraction over the given number of frames.
// The shared bounding size is computed only as a diagnostic; frame-local
// grids are sized from each frame's own coordinates.
func NewTemporalExtractor(samples []pointtable.Labeled, frames int) (*TemporalExtractor, error) {
	if frames < 1 {
		return nil, fmt.Errorf("frame count %d out of range", frames)
	}
	size, err := voxelgrid.StaticSize(samples)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("[TemporalExtractor] bounding size %dx%dx%d over %d samples", size.X, size.Y, size.Z, len(samples))
	return &TemporalExtractor{samples: samples, frames: frames, size: size}, nil
}

// GridSize returns the diagnostic bounding size computed at construction.
func (e *TemporalExtractor) GridSize() voxelgrid.Size {
	return e.size
}

// FrameCount returns the number of frames extracted per sample.
func (e *TemporalExtractor) FrameCount() int {
	return e.frames
}

// Extract processes samples in input order. For each sample it filters the
// point table to each frame in turn, builds the frame-local grid, normalizes
// its histogram, and appends the 64 values to the sample's row. A frame with
// no points at all fails extraction, as does a frame whose grid has no valid
// voxels.
func (e *TemporalExtractor) Extract() (*feature.Table, error) {
	tbl := feature.NewTable(FrameHistogramColumns(e.frames))
	for n, s := range e.samples {
		row := make([]float64, 0, e.frames*lbp.CodeCount)
		for f := 0; f < e.frames; f++ {
			frame := s.Table.FilterFrame(f)
			if frame.Len() == 0 {
				return nil, fmt.Errorf("sample %d: frame %d has no points", n, f)
			}
			ix := voxelgrid.NewFrameLocalIndexer(frame)
			g, _, err := voxelgrid.Build(frame, ix, voxelgrid.DropOutOfBounds)
			if err != nil {
				return nil, fmt.Errorf("sample %d frame %d: %w", n, f, err)
			}
			hist, err := lbp.ComputeHistogram(g).Normalize()
			if err != nil {
				return nil, fmt.Errorf("sample %d frame %d: %w", n, f, err)
			}
			row = append(row, hist...)
		}
		if err := tbl.Append(row, s.Label); err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
	}
	return tbl, nil
}

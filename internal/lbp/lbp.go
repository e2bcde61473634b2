// Package lbp implements the volumetric local binary pattern used for
// ventilation texture features: 6-neighbor sampling, binary-code encoding,
// and the interior-scan histogrammer.
package lbp

import (
	"errors"

	"github.com/airway-data/ventscan/internal/voxelgrid"
)

const (
	// NeighborCount is the size of the axis-aligned neighborhood.
	NeighborCount = 6
	// CodeCount is the number of distinct binary codes, 2^NeighborCount.
	CodeCount = 64
)

// ErrNoValidVoxels is returned when a histogram with a zero valid count is
// normalized. Surfacing it explicitly keeps a degenerate grid from leaking
// NaN rows into a feature table.
var ErrNoValidVoxels = errors.New("no valid voxels in grid")

// neighborOffsets orders the neighborhood: -x, +x, -y, +y, -z, +z. The
// first offset maps to the most significant code bit.
var neighborOffsets = [NeighborCount][3]int{
	{-1, 0, 0},
	{1, 0, 0},
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
}

// Sample retrieves the center value at (i,j,k) and its 6 axis neighbors in
// fixed order. ok is false when the center or any neighbor is undefined;
// the voxel then contributes nothing, there is no per-bit fallback.
func Sample(g *voxelgrid.Grid, i, j, k int) (center float64, neighbors [NeighborCount]float64, ok bool) {
	center, ok = g.At(i, j, k)
	if !ok {
		return 0, neighbors, false
	}
	for n, off := range neighborOffsets {
		v, defined := g.At(i+off[0], j+off[1], k+off[2])
		if !defined {
			return 0, neighbors, false
		}
		neighbors[n] = v
	}
	return center, neighbors, true
}

// Encode produces the binary code for a voxel: each neighbor contributes a
// 1 bit when it is >= the center (ties encode as 1), with the first
// neighbor (-x) as the most significant bit and the last (+z) as the least.
func Encode(center float64, neighbors [NeighborCount]float64) int {
	code := 0
	for _, v := range neighbors {
		code <<= 1
		if v >= center {
			code |= 1
		}
	}
	return code
}

// Histogram holds binary-code counts over a grid's interior and the number
// of voxels that contributed.
type Histogram struct {
	Counts [CodeCount]int
	Valid  int
}

// ComputeHistogram scans every interior voxel of the grid (indices 1
// through dimension-2 on each axis, so the outer shell never contributes),
// skips voxels whose center or neighbors are undefined, and accumulates
// code counts. A grid smaller than 3 along any axis has no interior and
// yields a zero histogram.
func ComputeHistogram(g *voxelgrid.Grid) Histogram {
	var h Histogram
	nx, ny, nz := g.Dims()
	for i := 1; i < nx-1; i++ {
		for j := 1; j < ny-1; j++ {
			for k := 1; k < nz-1; k++ {
				center, neighbors, ok := Sample(g, i, j, k)
				if !ok {
					continue
				}
				h.Counts[Encode(center, neighbors)]++
				h.Valid++
			}
		}
	}
	return h
}

// Normalize returns the histogram as a discrete distribution over the 64
// codes: counts divided by the valid count, summing to 1. Returns
// ErrNoValidVoxels when no voxel contributed.
func (h Histogram) Normalize() ([]float64, error) {
	if h.Valid == 0 {
		return nil, ErrNoValidVoxels
	}
	out := make([]float64, CodeCount)
	for i, c := range h.Counts {
		out[i] = float64(c) / float64(h.Valid)
	}
	return out, nil
}

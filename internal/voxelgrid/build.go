package voxelgrid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/airway-data/ventscan/internal/pointtable"
)

// ErrOutOfBounds marks a point whose coordinates fall outside the target
// grid under the strict bounds policy.
var ErrOutOfBounds = errors.New("coordinate outside grid bounds")

// BoundsPolicy selects how Build treats points that the indexer cannot
// place inside the grid.
type BoundsPolicy int

const (
	// DropOutOfBounds skips the point and counts it.
	DropOutOfBounds BoundsPolicy = iota
	// ErrorOutOfBounds fails the build on the first such point.
	ErrorOutOfBounds
)

// Size is the static grid size: the maximum integer index per axis. A grid
// built at this size has dimensions (X+1, Y+1, Z+1).
type Size struct {
	X, Y, Z int
}

// Indexer maps a point's raw coordinates to grid indices. ok is false when
// the point has no cell in the target grid.
type Indexer interface {
	Dims() (nx, ny, nz int)
	Index(p pointtable.Point) (i, j, k int, ok bool)
}

// AbsoluteIndexer places points at their integer-truncated coordinates
// inside a shared fixed-size grid. Used by the static extraction path,
// where cell (i,j,k) means the same physical location for every sample.
type AbsoluteIndexer struct {
	Size Size
}

// Dims returns the grid dimensions for the configured size.
func (ix AbsoluteIndexer) Dims() (nx, ny, nz int) {
	return ix.Size.X + 1, ix.Size.Y + 1, ix.Size.Z + 1
}

// Index truncates the point's coordinates toward zero. Negative indices
// are out of bounds.
func (ix AbsoluteIndexer) Index(p pointtable.Point) (i, j, k int, ok bool) {
	i, j, k = int(p.X), int(p.Y), int(p.Z)
	ok = i >= 0 && i <= ix.Size.X &&
		j >= 0 && j <= ix.Size.Y &&
		k >= 0 && k <= ix.Size.Z
	return i, j, k, ok
}

// FrameLocalIndexer ranks each axis's distinct coordinate values and places
// points at their rank. The resulting coordinate system is local to the
// table it was built from: cell (i,j,k) does not correspond to the same
// physical location across frames or samples, which is what lets irregular
// per-frame sampling build dense grids.
type FrameLocalIndexer struct {
	xs, ys, zs map[float64]int
}

// NewFrameLocalIndexer builds the rank maps from the sorted distinct
// coordinate values of the given table. All rows contribute coordinates,
// including rows with a missing measurement.
func NewFrameLocalIndexer(t *pointtable.Table) *FrameLocalIndexer {
	xs := make([]float64, 0, len(t.Points))
	ys := make([]float64, 0, len(t.Points))
	zs := make([]float64, 0, len(t.Points))
	for _, p := range t.Points {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
		zs = append(zs, p.Z)
	}
	return &FrameLocalIndexer{
		xs: rankMap(xs),
		ys: rankMap(ys),
		zs: rankMap(zs),
	}
}

// rankMap maps each distinct value to its rank in ascending order.
func rankMap(values []float64) map[float64]int {
	distinct := make([]float64, 0, len(values))
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			distinct = append(distinct, v)
		}
	}
	sort.Float64s(distinct)
	m := make(map[float64]int, len(distinct))
	for r, v := range distinct {
		m[v] = r
	}
	return m
}

// Dims returns the distinct-value cardinality per axis.
func (ix *FrameLocalIndexer) Dims() (nx, ny, nz int) {
	return len(ix.xs), len(ix.ys), len(ix.zs)
}

// Index returns the per-axis ranks of the point's coordinates. ok is false
// for coordinates the indexer has never seen, which cannot happen when the
// indexer was built from the same table.
func (ix *FrameLocalIndexer) Index(p pointtable.Point) (i, j, k int, ok bool) {
	i, iok := ix.xs[p.X]
	j, jok := ix.ys[p.Y]
	k, kok := ix.zs[p.Z]
	return i, j, k, iok && jok && kok
}

// Build constructs a dense grid from a point table under the given indexer.
// Rows with a missing measurement leave their cell undefined. Duplicate
// coordinates collapse to the last-written value. Returns the number of
// points dropped under DropOutOfBounds; under ErrorOutOfBounds the first
// such point fails the build with ErrOutOfBounds.
func Build(t *pointtable.Table, ix Indexer, policy BoundsPolicy) (*Grid, int, error) {
	g := New(ix.Dims())
	dropped := 0
	for _, p := range t.Points {
		if !p.HasSV {
			continue
		}
		i, j, k, ok := ix.Index(p)
		if !ok {
			if policy == ErrorOutOfBounds {
				return nil, 0, fmt.Errorf("point (%g, %g, %g): %w", p.X, p.Y, p.Z, ErrOutOfBounds)
			}
			dropped++
			continue
		}
		g.Set(i, j, k, p.SV)
	}
	return g, dropped, nil
}

// StaticSize returns the shared static grid size covering an ordered sample
// collection: per axis, the ceiling of the largest absolute coordinate seen
// in any sample. Errors on an empty collection or a sample with no points,
// since a bounding box over nothing has no meaning.
func StaticSize(samples []pointtable.Labeled) (Size, error) {
	if len(samples) == 0 {
		return Size{}, errors.New("no samples to size grid from")
	}
	var size Size
	for n, s := range samples {
		if s.Table == nil || s.Table.Len() == 0 {
			return Size{}, fmt.Errorf("sample %d has no points", n)
		}
		x, y, z := s.Table.MaxAbs()
		size.X = maxInt(size.X, int(math.Ceil(x)))
		size.Y = maxInt(size.Y, int(math.Ceil(y)))
		size.Z = maxInt(size.Z, int(math.Ceil(z)))
	}
	return size, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Package voxelgrid provides the dense 3D volume used by the texture
// pipeline: construction from sparse point tables under two indexing
// strategies, and the patch-completeness filter with its retention
// diagnostics. Cells carry an explicit defined mask; there is no NaN
// sentinel anywhere in the representation.
package voxelgrid

// Grid is a dense 3D array of scalar measurements. Cells start undefined
// and become defined through Set. A Grid is built once per sample (or per
// sample-frame) and never mutated after construction.
type Grid struct {
	nx, ny, nz int
	vals       []float64
	defined    []bool // len = nx*ny*nz, parallel to vals
}

// New returns a grid of the given dimensions with every cell undefined.
func New(nx, ny, nz int) *Grid {
	n := nx * ny * nz
	return &Grid{
		nx:      nx,
		ny:      ny,
		nz:      nz,
		vals:    make([]float64, n),
		defined: make([]bool, n),
	}
}

// Helper to index cells: idx = (i*ny + j)*nz + k
func (g *Grid) idx(i, j, k int) int { return (i*g.ny+j)*g.nz + k }

// Dims returns the grid dimensions along x, y, z.
func (g *Grid) Dims() (nx, ny, nz int) { return g.nx, g.ny, g.nz }

// InBounds reports whether (i,j,k) addresses a cell of the grid.
func (g *Grid) InBounds(i, j, k int) bool {
	return i >= 0 && i < g.nx && j >= 0 && j < g.ny && k >= 0 && k < g.nz
}

// Set defines the cell at (i,j,k) with the given value. Callers validate
// indices first (the builder does this through its bounds policy); Set
// panics on an out-of-range index rather than aliasing another cell.
func (g *Grid) Set(i, j, k int, v float64) {
	if !g.InBounds(i, j, k) {
		panic("voxelgrid: Set out of bounds")
	}
	n := g.idx(i, j, k)
	g.vals[n] = v
	g.defined[n] = true
}

// At returns the cell value and whether it is defined. Out-of-range
// indices read as undefined.
func (g *Grid) At(i, j, k int) (float64, bool) {
	if !g.InBounds(i, j, k) {
		return 0, false
	}
	n := g.idx(i, j, k)
	return g.vals[n], g.defined[n]
}

// Defined reports whether the cell at (i,j,k) holds a measurement.
func (g *Grid) Defined(i, j, k int) bool {
	_, ok := g.At(i, j, k)
	return ok
}

// DefinedCount returns the number of defined cells.
func (g *Grid) DefinedCount() int {
	n := 0
	for _, d := range g.defined {
		if d {
			n++
		}
	}
	return n
}

// ForEachDefined calls fn for every defined cell in x-major scan order.
func (g *Grid) ForEachDefined(fn func(i, j, k int, v float64)) {
	for i := 0; i < g.nx; i++ {
		for j := 0; j < g.ny; j++ {
			for k := 0; k < g.nz; k++ {
				n := g.idx(i, j, k)
				if g.defined[n] {
					fn(i, j, k, g.vals[n])
				}
			}
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := New(g.nx, g.ny, g.nz)
	copy(out.vals, g.vals)
	copy(out.defined, g.defined)
	return out
}

// Equal reports whether two grids have the same shape, the same defined
// mask, and the same values at every defined cell. Two undefined cells
// always compare equal.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.nx != o.nx || g.ny != o.ny || g.nz != o.nz {
		return false
	}
	for n := range g.defined {
		if g.defined[n] != o.defined[n] {
			return false
		}
		if g.defined[n] && g.vals[n] != o.vals[n] {
			return false
		}
	}
	return true
}

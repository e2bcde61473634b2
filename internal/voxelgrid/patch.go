package voxelgrid

import (
	"errors"
	"fmt"
)

// PatchFilter returns a grid of identical shape keeping only the cells that
// belong to at least one fully defined cubic patch of the given edge
// length. Every other cell is undefined. Overlapping complete patches
// rewrite identical values, so the filter is idempotent.
//
// Patch origins run to dimension-(edge-1) per axis, so patches ending flush
// with the grid boundary are considered.
func PatchFilter(g *Grid, edge int) (*Grid, error) {
	if edge < 1 {
		return nil, fmt.Errorf("patch edge length must be >= 1, got %d", edge)
	}
	nx, ny, nz := g.Dims()
	out := New(nx, ny, nz)
	for i := 0; i <= nx-edge; i++ {
		for j := 0; j <= ny-edge; j++ {
			for k := 0; k <= nz-edge; k++ {
				if !patchDefined(g, i, j, k, edge) {
					continue
				}
				copyPatch(out, g, i, j, k, edge)
			}
		}
	}
	return out, nil
}

// patchDefined reports whether every cell of the edge-length patch starting
// at (i,j,k) is defined.
func patchDefined(g *Grid, i, j, k, edge int) bool {
	for di := 0; di < edge; di++ {
		for dj := 0; dj < edge; dj++ {
			for dk := 0; dk < edge; dk++ {
				if !g.Defined(i+di, j+dj, k+dk) {
					return false
				}
			}
		}
	}
	return true
}

func copyPatch(dst, src *Grid, i, j, k, edge int) {
	for di := 0; di < edge; di++ {
		for dj := 0; dj < edge; dj++ {
			for dk := 0; dk < edge; dk++ {
				v, _ := src.At(i+di, j+dj, k+dk)
				dst.Set(i+di, j+dj, k+dk, v)
			}
		}
	}
}

// Retention summarizes the effect of a completeness filter on a grid.
type Retention struct {
	Original int     // defined cells before filtering
	Filtered int     // defined cells after filtering
	Fraction float64 // Filtered / Original
}

// RetentionStats counts defined cells before and after filtering and the
// fraction retained. Errors when the shapes differ or the original grid has
// no defined cells (the fraction would be meaningless).
func RetentionStats(orig, filtered *Grid) (Retention, error) {
	if err := sameShape(orig, filtered); err != nil {
		return Retention{}, err
	}
	r := Retention{
		Original: orig.DefinedCount(),
		Filtered: filtered.DefinedCount(),
	}
	if r.Original == 0 {
		return Retention{}, errors.New("original grid has no defined cells")
	}
	r.Fraction = float64(r.Filtered) / float64(r.Original)
	return r, nil
}

// RemovedCells returns a grid holding the original values of every cell the
// filter removed or changed. Cells equal in both grids stay undefined in
// the result; two undefined cells count as equal, so a never-measured cell
// is never reported as removed.
func RemovedCells(orig, filtered *Grid) (*Grid, error) {
	if err := sameShape(orig, filtered); err != nil {
		return nil, err
	}
	nx, ny, nz := orig.Dims()
	out := New(nx, ny, nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				ov, ook := orig.At(i, j, k)
				fv, fok := filtered.At(i, j, k)
				equal := (!ook && !fok) || (ook && fok && ov == fv)
				if equal || !ook {
					continue
				}
				out.Set(i, j, k, ov)
			}
		}
	}
	return out, nil
}

func sameShape(a, b *Grid) error {
	ax, ay, az := a.Dims()
	bx, by, bz := b.Dims()
	if ax != bx || ay != by || az != bz {
		return fmt.Errorf("grid shape mismatch: (%d,%d,%d) vs (%d,%d,%d)", ax, ay, az, bx, by, bz)
	}
	return nil
}

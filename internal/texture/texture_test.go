package texture

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/airway-data/ventscan/internal/lbp"
	"github.com/airway-data/ventscan/internal/pointtable"
	"github.com/airway-data/ventscan/internal/voxelgrid"
)

// cubePoints returns one point per (x,y,z) in the cross product of coords,
// all carrying the same measurement.
func cubePoints(coords []float64, sv float64, frame int) []pointtable.Point {
	var pts []pointtable.Point
	for _, x := range coords {
		for _, y := range coords {
			for _, z := range coords {
				pts = append(pts, pointtable.Point{X: x, Y: y, Z: z, SV: sv, HasSV: true, Frame: frame})
			}
		}
	}
	return pts
}

// oneHot returns a row of the given width with 1 at the given position.
func oneHot(width, at int) []float64 {
	row := make([]float64, width)
	row[at] = 1
	return row
}

func TestHistogramColumns(t *testing.T) {
	names := HistogramColumns()
	if len(names) != lbp.CodeCount {
		t.Fatalf("got %d columns, expected %d", len(names), lbp.CodeCount)
	}
	if names[0] != "lbp_00" || names[63] != "lbp_63" {
		t.Errorf("unexpected boundary names %q, %q", names[0], names[63])
	}
}

func TestFrameHistogramColumns(t *testing.T) {
	names := FrameHistogramColumns(DefaultFrameCount)
	if len(names) != DefaultFrameCount*lbp.CodeCount {
		t.Fatalf("got %d columns, expected %d", len(names), DefaultFrameCount*lbp.CodeCount)
	}
	if names[0] != "f00_lbp_00" || names[63] != "f00_lbp_63" || names[64] != "f01_lbp_00" {
		t.Errorf("unexpected frame block boundaries: %q, %q, %q", names[0], names[63], names[64])
	}
	if last := names[len(names)-1]; last != "f13_lbp_63" {
		t.Errorf("last column = %q, expected f13_lbp_63", last)
	}
}

func TestStaticExtractorUniformCube(t *testing.T) {
	// Every interior voxel of a uniform grid ties with all 6 neighbors,
	// which encodes as all ones.
	sample := pointtable.Labeled{
		Table: &pointtable.Table{Points: cubePoints([]float64{0, 1, 2, 3}, 1.0, 0)},
		Label: "control",
	}

	e, err := NewStaticExtractor([]pointtable.Labeled{sample}, voxelgrid.DropOutOfBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.GridSize() != (voxelgrid.Size{X: 3, Y: 3, Z: 3}) {
		t.Errorf("grid size = %+v, expected {3 3 3}", e.GridSize())
	}

	tbl, err := e.Extract()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("got %d rows, expected 1", tbl.NumRows())
	}
	if diff := cmp.Diff(oneHot(lbp.CodeCount, 63), tbl.Rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if tbl.Labels[0] != "control" {
		t.Errorf("label = %q, expected control", tbl.Labels[0])
	}
}

func TestStaticExtractorSharedSize(t *testing.T) {
	cube := pointtable.Labeled{
		Table: &pointtable.Table{Points: cubePoints([]float64{0, 1, 2, 3}, 1.0, 0)},
		Label: "control",
	}
	// A single complete neighborhood around (1,1,1): center 5, with the
	// -x,+x,-y,+y,-z,+z neighbors at 3,3,7,7,3,7 encoding 001101 = 13.
	// Inside the shared 4x4x4 grid every other interior voxel is missing a
	// neighbor and contributes nothing.
	code13 := pointtable.Labeled{
		Table: &pointtable.Table{Points: []pointtable.Point{
			{X: 1, Y: 1, Z: 1, SV: 5, HasSV: true},
			{X: 0, Y: 1, Z: 1, SV: 3, HasSV: true},
			{X: 2, Y: 1, Z: 1, SV: 3, HasSV: true},
			{X: 1, Y: 0, Z: 1, SV: 7, HasSV: true},
			{X: 1, Y: 2, Z: 1, SV: 7, HasSV: true},
			{X: 1, Y: 1, Z: 0, SV: 3, HasSV: true},
			{X: 1, Y: 1, Z: 2, SV: 7, HasSV: true},
		}},
		Label: "disease",
	}

	e, err := NewStaticExtractor([]pointtable.Labeled{cube, code13}, voxelgrid.DropOutOfBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.GridSize() != (voxelgrid.Size{X: 3, Y: 3, Z: 3}) {
		t.Errorf("shared size = %+v, expected the collection maximum {3 3 3}", e.GridSize())
	}

	tbl, err := e.Extract()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("got %d rows, expected 2", tbl.NumRows())
	}
	if diff := cmp.Diff(oneHot(lbp.CodeCount, 63), tbl.Rows[0]); diff != "" {
		t.Errorf("cube row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(oneHot(lbp.CodeCount, 13), tbl.Rows[1]); diff != "" {
		t.Errorf("code-13 row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"control", "disease"}, tbl.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestStaticExtractorNoValidVoxels(t *testing.T) {
	// A lone point yields a 1x1x1 grid with no interior.
	sample := pointtable.Labeled{
		Table: &pointtable.Table{Points: []pointtable.Point{{SV: 1, HasSV: true}}},
		Label: "control",
	}
	e, err := NewStaticExtractor([]pointtable.Labeled{sample}, voxelgrid.DropOutOfBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = e.Extract()
	if !errors.Is(err, lbp.ErrNoValidVoxels) {
		t.Errorf("got %v, expected ErrNoValidVoxels", err)
	}
}

func TestStaticExtractorBoundsPolicies(t *testing.T) {
	pts := cubePoints([]float64{0, 1, 2, 3}, 1.0, 0)
	pts = append(pts, pointtable.Point{X: -4, Y: 0, Z: 0, SV: 2, HasSV: true})
	sample := pointtable.Labeled{Table: &pointtable.Table{Points: pts}, Label: "control"}

	// Dropping keeps the cube untouched.
	e, err := NewStaticExtractor([]pointtable.Labeled{sample}, voxelgrid.DropOutOfBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl, err := e.Extract()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(oneHot(lbp.CodeCount, 63), tbl.Rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}

	// The strict policy surfaces the stray point instead.
	e, err = NewStaticExtractor([]pointtable.Labeled{sample}, voxelgrid.ErrorOutOfBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.Extract(); !errors.Is(err, voxelgrid.ErrOutOfBounds) {
		t.Errorf("got %v, expected ErrOutOfBounds", err)
	}
}

func TestNewStaticExtractorEmptyCollection(t *testing.T) {
	if _, err := NewStaticExtractor(nil, voxelgrid.DropOutOfBounds); err == nil {
		t.Error("empty collection should error")
	}
}

func TestTemporalExtractorFrameLocalGrids(t *testing.T) {
	// Two frames with disjoint, non-integer coordinate sets. Rank indexing
	// turns each into a dense 3x3x3 grid whose single interior voxel ties
	// with all neighbors.
	pts := cubePoints([]float64{0.5, 1.5, 2.5}, 1.0, 0)
	pts = append(pts, cubePoints([]float64{10, 20, 30}, 2.0, 1)...)
	sample := pointtable.Labeled{
		Table: &pointtable.Table{Points: pts, HasFrame: true},
		Label: "disease",
	}

	e, err := NewTemporalExtractor([]pointtable.Labeled{sample}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.FrameCount() != 2 {
		t.Errorf("frame count = %d, expected 2", e.FrameCount())
	}

	tbl, err := e.Extract()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.NumRows() != 1 || tbl.NumCols() != 2*lbp.CodeCount {
		t.Fatalf("table is %dx%d, expected 1x%d", tbl.NumRows(), tbl.NumCols(), 2*lbp.CodeCount)
	}

	want := make([]float64, 2*lbp.CodeCount)
	want[63] = 1
	want[lbp.CodeCount+63] = 1
	if diff := cmp.Diff(want, tbl.Rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if tbl.Labels[0] != "disease" {
		t.Errorf("label = %q, expected disease", tbl.Labels[0])
	}
}

func TestTemporalExtractorEmptyFrame(t *testing.T) {
	sample := pointtable.Labeled{
		Table: &pointtable.Table{
			Points:   cubePoints([]float64{0, 1, 2}, 1.0, 0),
			HasFrame: true,
		},
		Label: "control",
	}
	e, err := NewTemporalExtractor([]pointtable.Labeled{sample}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = e.Extract()
	if err == nil {
		t.Fatal("missing frame should error")
	}
	if !strings.Contains(err.Error(), "frame 1") {
		t.Errorf("error %q should name the missing frame", err)
	}
}

func TestTemporalExtractorDegenerateFrame(t *testing.T) {
	// Frame 1 exists but is too small to have any interior voxel.
	pts := cubePoints([]float64{0, 1, 2}, 1.0, 0)
	pts = append(pts, cubePoints([]float64{0, 1}, 1.0, 1)...)
	sample := pointtable.Labeled{
		Table: &pointtable.Table{Points: pts, HasFrame: true},
		Label: "control",
	}
	e, err := NewTemporalExtractor([]pointtable.Labeled{sample}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.Extract(); !errors.Is(err, lbp.ErrNoValidVoxels) {
		t.Errorf("got %v, expected ErrNoValidVoxels", err)
	}
}

func TestNewTemporalExtractorBadFrameCount(t *testing.T) {
	sample := pointtable.Labeled{
		Table: &pointtable.Table{Points: cubePoints([]float64{0, 1}, 1, 0)},
		Label: "control",
	}
	if _, err := NewTemporalExtractor([]pointtable.Labeled{sample}, 0); err == nil {
		t.Error("zero frame count should error")
	}
}

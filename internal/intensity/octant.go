package intensity

import "github.com/airway-data/ventscan/internal/pointtable"

// Octant identifies one of the eight lung regions split at the per-axis
// coordinate means: right is x above the mean, upper is y above the mean,
// front is z above the mean.
type Octant int

// Octants in report order.
const (
	LowerRightFront Octant = iota
	LowerRightBack
	LowerLeftFront
	LowerLeftBack
	UpperRightFront
	UpperRightBack
	UpperLeftFront
	UpperLeftBack
	OctantCount
)

var octantNames = [OctantCount]string{
	"lower_right_front",
	"lower_right_back",
	"lower_left_front",
	"lower_left_back",
	"upper_right_front",
	"upper_right_back",
	"upper_left_front",
	"upper_left_back",
}

// String returns the octant's snake_case name.
func (o Octant) String() string {
	if o < 0 || o >= OctantCount {
		return "unknown"
	}
	return octantNames[o]
}

// OctantOf places a point relative to the per-axis means. The comparisons
// are strict: ok is false when any coordinate sits exactly on its mean
// plane, and such points belong to no octant.
func OctantOf(p pointtable.Point, xMean, yMean, zMean float64) (Octant, bool) {
	if p.X == xMean || p.Y == yMean || p.Z == zMean {
		return 0, false
	}
	o := Octant(0)
	if p.Y > yMean {
		o += 4
	}
	if p.X < xMean {
		o += 2
	}
	if p.Z < zMean {
		o++
	}
	return o, true
}

// SplitOctants groups point indices by octant around the table's coordinate
// means. Points on a mean plane are left out.
func SplitOctants(t *pointtable.Table) [OctantCount][]int {
	xm, ym, zm := t.CoordMeans()
	var groups [OctantCount][]int
	for i, p := range t.Points {
		if o, ok := OctantOf(p, xm, ym, zm); ok {
			groups[o] = append(groups[o], i)
		}
	}
	return groups
}

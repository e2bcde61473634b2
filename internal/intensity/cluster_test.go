package intensity

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airway-data/ventscan/internal/pointtable"
)

func testParams(k int) Params {
	p := DefaultParams()
	p.Clusters = k
	return p
}

func TestClusterColumns(t *testing.T) {
	names := ClusterColumns(6)
	require.Len(t, names, 300)
	assert.Equal(t, "c0_l_mean", names[0])
	assert.Equal(t, "c0_g_mean", names[1])
	assert.Equal(t, "c0_lower_right_front_g_q50", names[2])
	assert.Equal(t, "c0_upper_left_back_l_q75", names[49])
	assert.Equal(t, "c1_l_mean", names[50])
}

func TestNewClusterExtractorNoControls(t *testing.T) {
	samples := []pointtable.Labeled{
		{Table: &pointtable.Table{Points: []pointtable.Point{{SV: 1, HasSV: true}}}, Label: "disease"},
	}
	_, err := NewClusterExtractor(samples, testParams(2))
	assert.Error(t, err)
}

func TestNewClusterExtractorFitLimit(t *testing.T) {
	control := func(values ...float64) pointtable.Labeled {
		tbl := &pointtable.Table{}
		for _, v := range values {
			tbl.Points = append(tbl.Points, pointtable.Point{SV: v, HasSV: true})
		}
		return pointtable.Labeled{Table: tbl, Label: DefaultControlLabel}
	}

	// The third control must not influence the global fit: pooling only the
	// first two leaves blobs at 0.5 and 10.5.
	samples := []pointtable.Labeled{
		control(0, 1),
		control(10, 11),
		control(100, 101),
	}
	e, err := NewClusterExtractor(samples, testParams(2))
	require.NoError(t, err)

	centroids := append([]float64(nil), e.GlobalModel().Centroids...)
	sort.Float64s(centroids)
	assert.InDelta(t, 0.5, centroids[0], 1e-9)
	assert.InDelta(t, 10.5, centroids[1], 1e-9)
}

func TestClusterExtractorRow(t *testing.T) {
	control := pointtable.Labeled{
		Table: &pointtable.Table{Points: []pointtable.Point{
			{X: 0, Y: 0, Z: 0, SV: 0, HasSV: true},
			{X: 1, Y: 1, Z: 1, SV: 10, HasSV: true},
		}},
		Label: DefaultControlLabel,
	}
	// Coordinate means sit at (2,2,2); each point lands in a distinct
	// octant. Values 1 and 2 fall to the low global centroid, 8 and 9 to
	// the high one, and the local fit splits the same way.
	disease := pointtable.Labeled{
		Table: &pointtable.Table{Points: []pointtable.Point{
			{X: 1, Y: 1, Z: 1, SV: 1, HasSV: true},
			{X: 1, Y: 1, Z: 3, SV: 2, HasSV: true},
			{X: 3, Y: 3, Z: 1, SV: 9, HasSV: true},
			{X: 3, Y: 3, Z: 3, SV: 8, HasSV: true},
		}},
		Label: "disease",
	}

	e, err := NewClusterExtractor([]pointtable.Labeled{control, disease}, testParams(2))
	require.NoError(t, err)

	tbl, err := e.Extract()
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []string{DefaultControlLabel, "disease"}, tbl.Labels)

	names := ClusterColumns(2)
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	want := make([]float64, len(names))
	set := func(name string, v float64) {
		i, ok := idx[name]
		require.True(t, ok, "unknown column %s", name)
		want[i] = v
	}

	set("c0_l_mean", 1.5)
	set("c0_g_mean", 1.5)
	set("c1_l_mean", 8.5)
	set("c1_g_mean", 8.5)
	// Single-point cluster/octant groups report that value as all three
	// quartiles under both assignments.
	for _, scope := range []string{"g", "l"} {
		for _, q := range []string{"q50", "q25", "q75"} {
			set(fmt.Sprintf("c0_lower_left_back_%s_%s", scope, q), 1)
			set(fmt.Sprintf("c0_lower_left_front_%s_%s", scope, q), 2)
			set(fmt.Sprintf("c1_upper_right_back_%s_%s", scope, q), 9)
			set(fmt.Sprintf("c1_upper_right_front_%s_%s", scope, q), 8)
		}
	}

	assert.Equal(t, want, tbl.Rows[1])
}

func TestClusterExtractorTooFewPoints(t *testing.T) {
	control := pointtable.Labeled{
		Table: &pointtable.Table{Points: []pointtable.Point{
			{SV: 0, HasSV: true},
			{SV: 10, HasSV: true},
		}},
		Label: DefaultControlLabel,
	}
	sparse := pointtable.Labeled{
		Table: &pointtable.Table{Points: []pointtable.Point{{SV: 5, HasSV: true}}},
		Label: "disease",
	}

	e, err := NewClusterExtractor([]pointtable.Labeled{control, sparse}, testParams(2))
	require.NoError(t, err)

	_, err = e.Extract()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample 1")
}

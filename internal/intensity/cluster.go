package intensity

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/airway-data/ventscan/internal/feature"
	"github.com/airway-data/ventscan/internal/monitoring"
	"github.com/airway-data/ventscan/internal/pointtable"
)

// clusterQuantiles lists the per-octant quantile columns in order.
var clusterQuantiles = [...]string{"q50", "q25", "q75"}

// ClusterColumns returns the cluster feature column names, cluster-major:
// for each cluster its local and global mean ventilation, then for each
// octant the quartiles of the cluster's values inside it, global assignment
// first, local second.
func ClusterColumns(k int) []string {
	names := make([]string, 0, k*(2+int(OctantCount)*2*len(clusterQuantiles)))
	for c := 0; c < k; c++ {
		names = append(names, fmt.Sprintf("c%d_l_mean", c), fmt.Sprintf("c%d_g_mean", c))
		for o := Octant(0); o < OctantCount; o++ {
			for _, scope := range []string{"g", "l"} {
				for _, q := range clusterQuantiles {
					names = append(names, fmt.Sprintf("c%d_%s_%s_%s", c, o, scope, q))
				}
			}
		}
	}
	return names
}

// ClusterExtractor derives ventilation-distribution features from two
// k-means views of each sample: a global model shared across the collection
// and a fresh local model fitted on the sample's own values. The global
// model is fitted once at construction over the pooled values of the
// leading control samples.
type ClusterExtractor struct {
	samples []pointtable.Labeled
	params  Params
	global  *KMeans
}

// NewClusterExtractor fits the global model. It errors when the collection
// has no control-labeled samples or their pooled values cannot form the
// configured cluster count.
func NewClusterExtractor(samples []pointtable.Labeled, params Params) (*ClusterExtractor, error) {
	var pooled []float64
	used := 0
	for _, s := range samples {
		if s.Label != params.ControlLabel {
			continue
		}
		pooled = append(pooled, s.Table.SVValues()...)
		used++
		if used == params.ControlFitLimit {
			break
		}
	}
	if used == 0 {
		return nil, fmt.Errorf("no %q samples to fit the global model", params.ControlLabel)
	}

	global, err := FitKMeans(pooled, params.Clusters, params.Seed, params.MaxIter)
	if err != nil {
		return nil, fmt.Errorf("global model: %w", err)
	}
	monitoring.Logf("[ClusterExtractor] global model fitted on %d control samples (%d values, k=%d)",
		used, len(pooled), params.Clusters)

	return &ClusterExtractor{samples: samples, params: params, global: global}, nil
}

// GlobalModel returns the fitted global model.
func (e *ClusterExtractor) GlobalModel() *KMeans { return e.global }

// Extract computes one cluster feature row per sample in input order.
func (e *ClusterExtractor) Extract() (*feature.Table, error) {
	tbl := feature.NewTable(ClusterColumns(e.params.Clusters))
	for n, s := range e.samples {
		row, err := e.sampleRow(s.Table)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
		if err := tbl.Append(row, s.Label); err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
	}
	return tbl, nil
}

// sampleRow assigns the sample's measured values under both models, relabels
// cluster ids by ascending mean so cluster 0 is always the lowest-ventilation
// cluster, and assembles the row. Clusters or octant groups with no points
// contribute zeros.
func (e *ClusterExtractor) sampleRow(t *pointtable.Table) ([]float64, error) {
	m := t.Measured()
	values := m.SVValues()
	k := e.params.Clusters
	if len(values) < k {
		return nil, fmt.Errorf("%d measured points cannot form %d clusters", len(values), k)
	}

	gAssign := RelabelByMean(values, e.global.PredictAll(values), k)

	local, err := FitKMeans(values, k, e.params.Seed, e.params.MaxIter)
	if err != nil {
		return nil, fmt.Errorf("local model: %w", err)
	}
	lAssign := RelabelByMean(values, local.PredictAll(values), k)

	groups := SplitOctants(m)

	row := make([]float64, 0, k*(2+int(OctantCount)*2*len(clusterQuantiles)))
	for c := 0; c < k; c++ {
		row = append(row, groupMean(values, lAssign, c), groupMean(values, gAssign, c))
		for o := Octant(0); o < OctantCount; o++ {
			row = append(row, quartiles(selectValues(values, groups[o], gAssign, c))...)
			row = append(row, quartiles(selectValues(values, groups[o], lAssign, c))...)
		}
	}
	return row, nil
}

// groupMean returns the mean of the values assigned to cluster c, zero when
// the cluster is empty.
func groupMean(values []float64, assign []int, c int) float64 {
	var sum float64
	n := 0
	for i, a := range assign {
		if a == c {
			sum += values[i]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// selectValues picks the values at the given indices whose assignment is c.
func selectValues(values []float64, idx []int, assign []int, c int) []float64 {
	out := make([]float64, 0, len(idx))
	for _, i := range idx {
		if assign[i] == c {
			out = append(out, values[i])
		}
	}
	return out
}

// quartiles returns the median, lower quartile and upper quartile in column
// order, zeros for an empty group.
func quartiles(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{0, 0, 0}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return []float64{
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.25, stat.Empirical, sorted, nil),
		stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
}

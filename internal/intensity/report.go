package intensity

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/airway-data/ventscan/internal/feature"
	"github.com/airway-data/ventscan/internal/pointtable"
)

// reportStats lists the per-octant statistics in column order.
var reportStats = [...]string{"mean", "vdp", "het", "kurtosis", "variance"}

// ReportColumns returns the report feature column names, octant-major.
func ReportColumns() []string {
	names := make([]string, 0, int(OctantCount)*len(reportStats))
	for o := Octant(0); o < OctantCount; o++ {
		for _, s := range reportStats {
			names = append(names, fmt.Sprintf("%s_%s", o, s))
		}
	}
	return names
}

// regionStats computes the five report statistics over one region's
// ventilation values: mean, ventilation defect percentage (fraction of
// points below vdpFactor*mean), heterogeneity (interquartile range over
// mean), excess kurtosis, and population variance. An empty region yields
// zeros so feature rows stay fixed-width, as does kurtosis of a constant
// region and heterogeneity around a zero mean.
func regionStats(values []float64, vdpFactor float64) [5]float64 {
	var out [5]float64
	if len(values) == 0 {
		return out
	}

	mean := stat.Mean(values, nil)

	defects := 0
	for _, v := range values {
		if v < vdpFactor*mean {
			defects++
		}
	}
	vdp := float64(defects) / float64(len(values))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	het := 0.0
	if mean != 0 {
		het = iqr / mean
	}

	variance := stat.PopVariance(values, nil)
	kurtosis := 0.0
	if variance > 0 {
		kurtosis = stat.Moment(4, values, nil)/(variance*variance) - 3
	}

	return [5]float64{mean, vdp, het, kurtosis, variance}
}

// ReportVector computes the report feature row for one sample: five
// statistics per octant, octant-major. Only measured points participate,
// both in the octant split and in the statistics.
func ReportVector(t *pointtable.Table, vdpFactor float64) ([]float64, error) {
	m := t.Measured()
	if m.Len() == 0 {
		return nil, errors.New("sample has no measured points")
	}
	groups := SplitOctants(m)
	row := make([]float64, 0, int(OctantCount)*len(reportStats))
	for o := Octant(0); o < OctantCount; o++ {
		values := make([]float64, 0, len(groups[o]))
		for _, i := range groups[o] {
			values = append(values, m.Points[i].SV)
		}
		s := regionStats(values, vdpFactor)
		row = append(row, s[:]...)
	}
	return row, nil
}

// ReportExtractor computes report features over a labeled collection.
type ReportExtractor struct {
	samples []pointtable.Labeled
	params  Params
}

// NewReportExtractor prepares report extraction with the given parameters.
func NewReportExtractor(samples []pointtable.Labeled, params Params) *ReportExtractor {
	return &ReportExtractor{samples: samples, params: params}
}

// Extract computes one report row per sample in input order.
func (e *ReportExtractor) Extract() (*feature.Table, error) {
	tbl := feature.NewTable(ReportColumns())
	for n, s := range e.samples {
		row, err := ReportVector(s.Table, e.params.VDPFactor)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
		if err := tbl.Append(row, s.Label); err != nil {
			return nil, fmt.Errorf("sample %d: %w", n, err)
		}
	}
	return tbl, nil
}

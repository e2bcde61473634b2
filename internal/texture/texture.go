// Package texture orchestrates volumetric binary-pattern feature extraction
// over labeled sample collections. The static extractor builds one grid per
// sample in a shared coordinate system; the temporal extractor builds one
// frame-local grid per time frame and concatenates the per-frame histograms
// into a single wide row.
package texture

import (
	"fmt"

	"github.com/airway-data/ventscan/internal/lbp"
)

// HistogramColumns returns the static feature column names, one per binary
// code.
func HistogramColumns() []string {
	names := make([]string, lbp.CodeCount)
	for c := range names {
		names[c] = fmt.Sprintf("lbp_%02d", c)
	}
	return names
}

// FrameHistogramColumns returns the temporal feature column names: one block
// of code columns per frame, frame-major.
func FrameHistogramColumns(frames int) []string {
	names := make([]string, 0, frames*lbp.CodeCount)
	for f := 0; f < frames; f++ {
		for c := 0; c < lbp.CodeCount; c++ {
			names = append(names, fmt.Sprintf("f%02d_lbp_%02d", f, c))
		}
	}
	return names
}

// Package intensity extracts ventilation-distribution features: per-cluster
// statistics under a shared global k-means model and a sample-local one, and
// report-style descriptive statistics per lung octant. These complement the
// volumetric texture features and share their label/row-order conventions.
package intensity

// Defaults for the intensity feature extractors.
const (
	// DefaultClusters is the number of ventilation clusters.
	DefaultClusters = 6
	// DefaultSeed seeds the k-means random source, keeping fits reproducible.
	DefaultSeed = 1
	// DefaultMaxIter bounds Lloyd iterations per fit.
	DefaultMaxIter = 100
	// DefaultVDPFactor scales the regional mean into the ventilation-defect
	// threshold: points below factor*mean count as defect.
	DefaultVDPFactor = 0.6
	// DefaultControlLabel marks the samples eligible to fit the global model.
	DefaultControlLabel = "control"
	// DefaultControlFitLimit caps how many control samples feed the global fit.
	DefaultControlFitLimit = 2
)

// Params configures the intensity extractors.
type Params struct {
	Clusters        int
	Seed            int64
	MaxIter         int
	VDPFactor       float64
	ControlLabel    string
	ControlFitLimit int
}

// DefaultParams returns the standard extraction parameters.
func DefaultParams() Params {
	return Params{
		Clusters:        DefaultClusters,
		Seed:            DefaultSeed,
		MaxIter:         DefaultMaxIter,
		VDPFactor:       DefaultVDPFactor,
		ControlLabel:    DefaultControlLabel,
		ControlFitLimit: DefaultControlFitLimit,
	}
}

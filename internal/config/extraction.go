package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical extraction defaults file.
// This is the single source of truth for all default extraction values.
const DefaultConfigPath = "config/extraction.defaults.json"

// Bounds policy names accepted in bounds_policy.
const (
	BoundsPolicyDrop  = "drop"
	BoundsPolicyError = "error"
)

// ExtractionConfig represents the root configuration for feature extraction
// parameters. Fields are pointers so a partial JSON file overrides only what
// it names; the Get* methods fall back to defaults for nil fields.
type ExtractionConfig struct {
	// Texture params
	Frames       *int    `json:"frames,omitempty"`
	PatchEdge    *int    `json:"patch_edge,omitempty"`
	BoundsPolicy *string `json:"bounds_policy,omitempty"` // "drop" or "error"

	// Intensity params
	Clusters        *int     `json:"clusters,omitempty"`
	Seed            *int64   `json:"seed,omitempty"`
	MaxIter         *int     `json:"max_iter,omitempty"`
	VDPFactor       *float64 `json:"vdp_factor,omitempty"`
	ControlLabel    *string  `json:"control_label,omitempty"`
	ControlFitLimit *int     `json:"control_fit_limit,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyExtractionConfig returns an ExtractionConfig with all fields set to nil.
// Use LoadExtractionConfig to load actual values from the defaults file.
func EmptyExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{}
}

// DefaultExtractionConfig returns a config with every field set to its
// default value. It mirrors what the Get* methods return on an empty config.
func DefaultExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{
		Frames:          ptrInt(14),
		PatchEdge:       ptrInt(3),
		BoundsPolicy:    ptrString(BoundsPolicyDrop),
		Clusters:        ptrInt(6),
		Seed:            ptrInt64(1),
		MaxIter:         ptrInt(100),
		VDPFactor:       ptrFloat64(0.6),
		ControlLabel:    ptrString("control"),
		ControlFitLimit: ptrInt(2),
	}
}

// LoadExtractionConfig loads an ExtractionConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadExtractionConfig(path string) (*ExtractionConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyExtractionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical extraction defaults from
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *ExtractionConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from deeper packages
		"../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadExtractionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ExtractionConfig) Validate() error {
	if c.Frames != nil && *c.Frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", *c.Frames)
	}
	if c.PatchEdge != nil && *c.PatchEdge < 1 {
		return fmt.Errorf("patch_edge must be positive, got %d", *c.PatchEdge)
	}
	if c.BoundsPolicy != nil && *c.BoundsPolicy != "" {
		if *c.BoundsPolicy != BoundsPolicyDrop && *c.BoundsPolicy != BoundsPolicyError {
			return fmt.Errorf("bounds_policy must be %q or %q, got %q",
				BoundsPolicyDrop, BoundsPolicyError, *c.BoundsPolicy)
		}
	}
	if c.Clusters != nil && *c.Clusters < 1 {
		return fmt.Errorf("clusters must be positive, got %d", *c.Clusters)
	}
	if c.MaxIter != nil && *c.MaxIter < 1 {
		return fmt.Errorf("max_iter must be positive, got %d", *c.MaxIter)
	}
	if c.VDPFactor != nil && *c.VDPFactor < 0 {
		return fmt.Errorf("vdp_factor must be non-negative, got %f", *c.VDPFactor)
	}
	if c.ControlFitLimit != nil && *c.ControlFitLimit < 1 {
		return fmt.Errorf("control_fit_limit must be positive, got %d", *c.ControlFitLimit)
	}
	return nil
}

// GetFrames returns the frames value or the default.
func (c *ExtractionConfig) GetFrames() int {
	if c.Frames == nil {
		return 14 // default
	}
	return *c.Frames
}

// GetPatchEdge returns the patch_edge value or the default.
func (c *ExtractionConfig) GetPatchEdge() int {
	if c.PatchEdge == nil {
		return 3 // default
	}
	return *c.PatchEdge
}

// GetBoundsPolicy returns the bounds_policy value or the default.
func (c *ExtractionConfig) GetBoundsPolicy() string {
	if c.BoundsPolicy == nil || *c.BoundsPolicy == "" {
		return BoundsPolicyDrop // default
	}
	return *c.BoundsPolicy
}

// GetClusters returns the clusters value or the default.
func (c *ExtractionConfig) GetClusters() int {
	if c.Clusters == nil {
		return 6 // default
	}
	return *c.Clusters
}

// GetSeed returns the seed value or the default.
func (c *ExtractionConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 1 // default
	}
	return *c.Seed
}

// GetMaxIter returns the max_iter value or the default.
func (c *ExtractionConfig) GetMaxIter() int {
	if c.MaxIter == nil {
		return 100 // default
	}
	return *c.MaxIter
}

// GetVDPFactor returns the vdp_factor value or the default.
func (c *ExtractionConfig) GetVDPFactor() float64 {
	if c.VDPFactor == nil {
		return 0.6 // default
	}
	return *c.VDPFactor
}

// GetControlLabel returns the control_label value or the default.
func (c *ExtractionConfig) GetControlLabel() string {
	if c.ControlLabel == nil || *c.ControlLabel == "" {
		return "control" // default
	}
	return *c.ControlLabel
}

// GetControlFitLimit returns the control_fit_limit value or the default.
func (c *ExtractionConfig) GetControlFitLimit() int {
	if c.ControlFitLimit == nil {
		return 2 // default
	}
	return *c.ControlFitLimit
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultExtractionConfig(t *testing.T) {
	cfg := DefaultExtractionConfig()

	// Defaults are set via pointers
	if cfg.Frames == nil || *cfg.Frames != 14 {
		t.Errorf("Expected Frames 14, got %v", cfg.Frames)
	}
	if cfg.PatchEdge == nil || *cfg.PatchEdge != 3 {
		t.Errorf("Expected PatchEdge 3, got %v", cfg.PatchEdge)
	}
	if cfg.Clusters == nil || *cfg.Clusters != 6 {
		t.Errorf("Expected Clusters 6, got %v", cfg.Clusters)
	}
	if cfg.VDPFactor == nil || *cfg.VDPFactor != 0.6 {
		t.Errorf("Expected VDPFactor 0.6, got %v", cfg.VDPFactor)
	}
	if cfg.ControlLabel == nil || *cfg.ControlLabel != "control" {
		t.Errorf("Expected ControlLabel 'control', got %v", cfg.ControlLabel)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyExtractionConfig()

	if cfg.GetFrames() != 14 {
		t.Errorf("GetFrames() = %d, want 14", cfg.GetFrames())
	}
	if cfg.GetPatchEdge() != 3 {
		t.Errorf("GetPatchEdge() = %d, want 3", cfg.GetPatchEdge())
	}
	if cfg.GetBoundsPolicy() != BoundsPolicyDrop {
		t.Errorf("GetBoundsPolicy() = %q, want %q", cfg.GetBoundsPolicy(), BoundsPolicyDrop)
	}
	if cfg.GetClusters() != 6 {
		t.Errorf("GetClusters() = %d, want 6", cfg.GetClusters())
	}
	if cfg.GetSeed() != 1 {
		t.Errorf("GetSeed() = %d, want 1", cfg.GetSeed())
	}
	if cfg.GetMaxIter() != 100 {
		t.Errorf("GetMaxIter() = %d, want 100", cfg.GetMaxIter())
	}
	if cfg.GetVDPFactor() != 0.6 {
		t.Errorf("GetVDPFactor() = %f, want 0.6", cfg.GetVDPFactor())
	}
	if cfg.GetControlLabel() != "control" {
		t.Errorf("GetControlLabel() = %q, want 'control'", cfg.GetControlLabel())
	}
	if cfg.GetControlFitLimit() != 2 {
		t.Errorf("GetControlFitLimit() = %d, want 2", cfg.GetControlFitLimit())
	}
}

func TestLoadExtractionConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "frames": 10,
  "patch_edge": 5,
  "bounds_policy": "error",
  "clusters": 4,
  "seed": 99,
  "vdp_factor": 0.5,
  "control_label": "healthy"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadExtractionConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetFrames() != 10 {
		t.Errorf("GetFrames() = %d, want 10", cfg.GetFrames())
	}
	if cfg.GetPatchEdge() != 5 {
		t.Errorf("GetPatchEdge() = %d, want 5", cfg.GetPatchEdge())
	}
	if cfg.GetBoundsPolicy() != BoundsPolicyError {
		t.Errorf("GetBoundsPolicy() = %q, want %q", cfg.GetBoundsPolicy(), BoundsPolicyError)
	}
	if cfg.GetClusters() != 4 {
		t.Errorf("GetClusters() = %d, want 4", cfg.GetClusters())
	}
	if cfg.GetSeed() != 99 {
		t.Errorf("GetSeed() = %d, want 99", cfg.GetSeed())
	}
	if cfg.GetVDPFactor() != 0.5 {
		t.Errorf("GetVDPFactor() = %f, want 0.5", cfg.GetVDPFactor())
	}
	if cfg.GetControlLabel() != "healthy" {
		t.Errorf("GetControlLabel() = %q, want 'healthy'", cfg.GetControlLabel())
	}

	// Fields omitted from the JSON keep their defaults.
	if cfg.GetMaxIter() != 100 {
		t.Errorf("GetMaxIter() = %d, want default 100", cfg.GetMaxIter())
	}
	if cfg.GetControlFitLimit() != 2 {
		t.Errorf("GetControlFitLimit() = %d, want default 2", cfg.GetControlFitLimit())
	}
}

func TestLoadExtractionConfigMissing(t *testing.T) {
	_, err := LoadExtractionConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadExtractionConfigBadExtension(t *testing.T) {
	_, err := LoadExtractionConfig("/tmp/config.yaml")
	if err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}
}

func TestLoadExtractionConfigInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadExtractionConfig(configPath); err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name string
		cfg  ExtractionConfig
	}{
		{"zero_frames", ExtractionConfig{Frames: ptrInt(0)}},
		{"zero_patch_edge", ExtractionConfig{PatchEdge: ptrInt(0)}},
		{"bad_bounds_policy", ExtractionConfig{BoundsPolicy: ptrString("ignore")}},
		{"zero_clusters", ExtractionConfig{Clusters: ptrInt(0)}},
		{"zero_max_iter", ExtractionConfig{MaxIter: ptrInt(0)}},
		{"negative_vdp_factor", ExtractionConfig{VDPFactor: ptrFloat64(-0.1)}},
		{"zero_fit_limit", ExtractionConfig{ControlFitLimit: ptrInt(0)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetFrames() != 14 {
		t.Errorf("defaults file frames = %d, want 14", cfg.GetFrames())
	}
	if cfg.GetClusters() != 6 {
		t.Errorf("defaults file clusters = %d, want 6", cfg.GetClusters())
	}
}

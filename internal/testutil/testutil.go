// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteFile writes content to dir/name, creating parent directories as
// needed, and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// CubeSampleCSV renders a sample CSV holding one measured point per (x,y,z)
// in the cross product of coords, all with the same measurement. A negative
// frame omits the Frame column; otherwise every row carries that frame.
func CubeSampleCSV(coords []float64, sv float64, frame int) string {
	var sb strings.Builder
	if frame < 0 {
		sb.WriteString("X,Y,Z,SV\n")
	} else {
		sb.WriteString("X,Y,Z,SV,Frame\n")
	}
	for _, x := range coords {
		for _, y := range coords {
			for _, z := range coords {
				if frame < 0 {
					fmt.Fprintf(&sb, "%g,%g,%g,%g\n", x, y, z, sv)
				} else {
					fmt.Fprintf(&sb, "%g,%g,%g,%g,%d\n", x, y, z, sv, frame)
				}
			}
		}
	}
	return sb.String()
}

// ManifestCSV renders a manifest from alternating path, label pairs.
func ManifestCSV(pathLabelPairs ...string) string {
	if len(pathLabelPairs)%2 != 0 {
		panic("ManifestCSV requires path,label pairs")
	}
	var sb strings.Builder
	sb.WriteString("path,label\n")
	for i := 0; i < len(pathLabelPairs); i += 2 {
		fmt.Fprintf(&sb, "%s,%s\n", pathLabelPairs[i], pathLabelPairs[i+1])
	}
	return sb.String()
}

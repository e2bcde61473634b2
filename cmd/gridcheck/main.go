package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/airway-data/ventscan/internal/config"
	"github.com/airway-data/ventscan/internal/pointtable"
	"github.com/airway-data/ventscan/internal/version"
	"github.com/airway-data/ventscan/internal/voxelgrid"
)

var (
	manifestPath = flag.String("manifest", "", "Manifest CSV listing sample tables (path,label columns)")
	patchEdge    = flag.Int("edge", 0, "Patch edge length (0 uses the config value)")
	configPath   = flag.String("config", "", "Extraction config JSON (built-in defaults when omitted)")
	output       = flag.String("out", "", "Output CSV filename (defaults to stdout)")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

// sampleDiagnostics summarizes how much of one sample's grid survives the
// patch completeness filter.
type sampleDiagnostics struct {
	Points    int     // rows in the sample table
	Dropped   int     // points outside the shared grid
	Defined   int     // measured cells before filtering
	Retained  int     // measured cells after filtering
	Removed   int     // measured cells the filter discarded
	Retention float64 // Retained / Defined, 0 when nothing was measured
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *manifestPath == "" {
		log.Fatal("Manifest path is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	edge := *patchEdge
	if edge == 0 {
		edge = cfg.GetPatchEdge()
	}

	samples, err := pointtable.ReadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("Failed to read manifest: %v", err)
	}

	size, err := voxelgrid.StaticSize(samples)
	if err != nil {
		log.Fatalf("Failed to compute grid size: %v", err)
	}
	log.Printf("Checking %d samples on a %dx%dx%d grid, patch edge %d",
		len(samples), size.X+1, size.Y+1, size.Z+1, edge)

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output file %s: %v", *output, err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	defer w.Flush()
	w.Write([]string{"sample", "label", "points", "dropped", "defined", "retained", "removed", "retention"})

	ix := voxelgrid.AbsoluteIndexer{Size: size}
	for n, s := range samples {
		d, err := diagnose(s.Table, ix, edge)
		if err != nil {
			log.Fatalf("Sample %d: %v", n, err)
		}
		if d.Defined == 0 {
			log.Printf("WARNING: sample %d has no measured cells", n)
		}
		w.Write(diagnosticsRow(n, s.Label, d))
	}
}

func loadConfig(path string) (*config.ExtractionConfig, error) {
	if path == "" {
		return config.DefaultExtractionConfig(), nil
	}
	return config.LoadExtractionConfig(path)
}

// diagnose builds the sample's grid in the shared frame, applies the patch
// filter, and counts what survived.
func diagnose(t *pointtable.Table, ix voxelgrid.AbsoluteIndexer, edge int) (sampleDiagnostics, error) {
	g, dropped, err := voxelgrid.Build(t, ix, voxelgrid.DropOutOfBounds)
	if err != nil {
		return sampleDiagnostics{}, err
	}

	filtered, err := voxelgrid.PatchFilter(g, edge)
	if err != nil {
		return sampleDiagnostics{}, err
	}
	removed, err := voxelgrid.RemovedCells(g, filtered)
	if err != nil {
		return sampleDiagnostics{}, err
	}

	d := sampleDiagnostics{
		Points:   t.Len(),
		Dropped:  dropped,
		Defined:  g.DefinedCount(),
		Retained: filtered.DefinedCount(),
		Removed:  removed.DefinedCount(),
	}
	if d.Defined > 0 {
		d.Retention = float64(d.Retained) / float64(d.Defined)
	}
	return d, nil
}

func diagnosticsRow(n int, label string, d sampleDiagnostics) []string {
	return []string{
		strconv.Itoa(n),
		label,
		strconv.Itoa(d.Points),
		strconv.Itoa(d.Dropped),
		strconv.Itoa(d.Defined),
		strconv.Itoa(d.Retained),
		strconv.Itoa(d.Removed),
		fmt.Sprintf("%.6f", d.Retention),
	}
}

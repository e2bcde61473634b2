package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/airway-data/ventscan/internal/config"
	"github.com/airway-data/ventscan/internal/feature"
	"github.com/airway-data/ventscan/internal/intensity"
	"github.com/airway-data/ventscan/internal/pointtable"
	"github.com/airway-data/ventscan/internal/runstore"
	"github.com/airway-data/ventscan/internal/texture"
	"github.com/airway-data/ventscan/internal/version"
	"github.com/airway-data/ventscan/internal/voxelgrid"
)

var (
	manifestPath = flag.String("manifest", "", "Manifest CSV listing sample tables (path,label columns)")
	mode         = flag.String("mode", "static", "Extractor: 'static', 'temporal', 'cluster', 'report', or 'combined'")
	output       = flag.String("out", "", "Output CSV filename (defaults to features-<mode>-<timestamp>.csv)")
	configPath   = flag.String("config", "", "Extraction config JSON (built-in defaults when omitted)")
	dbPath       = flag.String("db", "", "Record the run in this SQLite runs database")
	strictBounds = flag.Bool("strict-bounds", false, "Fail on out-of-bounds points instead of dropping them")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

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

	samples, err := pointtable.ReadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("Failed to read manifest: %v", err)
	}
	log.Printf("Loaded %d samples from %s", len(samples), *manifestPath)

	// Attach a run recorder when a runs database is given. Extraction itself
	// never depends on the database.
	var recorder *runstore.RunRecorder
	if *dbPath != "" {
		store, err := runstore.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open runs database: %v", err)
		}
		defer store.Close()

		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			log.Fatalf("Failed to encode config: %v", err)
		}
		recorder = runstore.NewRunRecorder(store)
		if _, err := recorder.StartRun(*mode, *manifestPath, string(cfgJSON)); err != nil {
			log.Fatalf("Failed to start run: %v", err)
		}
	}

	start := time.Now()
	tbl, err := extract(*mode, samples, cfg, *strictBounds)
	if err != nil {
		recordFailure(recorder, err)
		log.Fatalf("%s extraction failed: %v", *mode, err)
	}
	log.Printf("Extracted %d rows x %d features in %.2fs",
		tbl.NumRows(), tbl.NumCols(), time.Since(start).Seconds())

	filename := *output
	if filename == "" {
		filename = fmt.Sprintf("features-%s-%s.csv", *mode, time.Now().Format("20060102-150405"))
	}
	if err := writeTable(tbl, filename); err != nil {
		recordFailure(recorder, err)
		log.Fatalf("Failed to write output: %v", err)
	}

	if recorder != nil {
		if err := recorder.CompleteRun(tbl); err != nil {
			log.Fatalf("Failed to record run: %v", err)
		}
	}
	log.Printf("Features written to %s", filename)
}

// loadConfig reads the extraction config from path, or returns the built-in
// defaults when no path is given.
func loadConfig(path string) (*config.ExtractionConfig, error) {
	if path == "" {
		return config.DefaultExtractionConfig(), nil
	}
	return config.LoadExtractionConfig(path)
}

// boundsPolicy maps the config value to a grid bounds policy. The
// strict-bounds flag overrides the config.
func boundsPolicy(cfg *config.ExtractionConfig, strict bool) voxelgrid.BoundsPolicy {
	if strict || cfg.GetBoundsPolicy() == config.BoundsPolicyError {
		return voxelgrid.ErrorOutOfBounds
	}
	return voxelgrid.DropOutOfBounds
}

func intensityParams(cfg *config.ExtractionConfig) intensity.Params {
	return intensity.Params{
		Clusters:        cfg.GetClusters(),
		Seed:            cfg.GetSeed(),
		MaxIter:         cfg.GetMaxIter(),
		VDPFactor:       cfg.GetVDPFactor(),
		ControlLabel:    cfg.GetControlLabel(),
		ControlFitLimit: cfg.GetControlFitLimit(),
	}
}

// extract runs the selected extractor over the samples.
func extract(mode string, samples []pointtable.Labeled, cfg *config.ExtractionConfig, strict bool) (*feature.Table, error) {
	switch mode {
	case "static":
		e, err := texture.NewStaticExtractor(samples, boundsPolicy(cfg, strict))
		if err != nil {
			return nil, err
		}
		return e.Extract()

	case "temporal":
		e, err := texture.NewTemporalExtractor(samples, cfg.GetFrames())
		if err != nil {
			return nil, err
		}
		return e.Extract()

	case "cluster":
		e, err := intensity.NewClusterExtractor(samples, intensityParams(cfg))
		if err != nil {
			return nil, err
		}
		return e.Extract()

	case "report":
		return intensity.NewReportExtractor(samples, intensityParams(cfg)).Extract()

	case "combined":
		return extractCombined(samples, intensityParams(cfg))

	default:
		return nil, fmt.Errorf("unknown mode %q (must be static, temporal, cluster, report, or combined)", mode)
	}
}

// extractCombined standardizes the cluster features and appends the raw
// report features for the same samples.
func extractCombined(samples []pointtable.Labeled, params intensity.Params) (*feature.Table, error) {
	ce, err := intensity.NewClusterExtractor(samples, params)
	if err != nil {
		return nil, err
	}
	clusterTbl, err := ce.Extract()
	if err != nil {
		return nil, fmt.Errorf("cluster features: %w", err)
	}
	reportTbl, err := intensity.NewReportExtractor(samples, params).Extract()
	if err != nil {
		return nil, fmt.Errorf("report features: %w", err)
	}
	return feature.Combine(clusterTbl, reportTbl)
}

func writeTable(tbl *feature.Table, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := tbl.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func recordFailure(recorder *runstore.RunRecorder, err error) {
	if recorder == nil {
		return
	}
	if ferr := recorder.FailRun(err.Error()); ferr != nil {
		log.Printf("WARNING: could not record run failure: %v", ferr)
	}
}

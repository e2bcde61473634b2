package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/airway-data/ventscan/internal/runstore"
	"github.com/airway-data/ventscan/internal/version"
)

var (
	dbPath      = flag.String("db", "features.db", "Path to the runs SQLite database")
	listLimit   = flag.Int("limit", 20, "Maximum runs to list")
	output      = flag.String("out", "", "Output CSV filename for export (defaults to stdout)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	store, err := runstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open runs database: %v", err)
	}
	defer store.Close()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "migrate":
		if len(args) < 1 {
			log.Fatal("migrate requires a direction: up, down, or version")
		}
		if err := runMigrate(store, args[0]); err != nil {
			log.Fatalf("Migrate %s failed: %v", args[0], err)
		}
	case "runs":
		if err := listRuns(store, *listLimit); err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
	case "export":
		if len(args) < 1 {
			log.Fatal("export requires a run id")
		}
		if err := exportRun(store, args[0], *output); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`featuredb - administer the extraction runs database

Usage: featuredb [flags] <command>

Commands:
  migrate up       Apply pending schema migrations
  migrate down     Roll back the most recent migration
  migrate version  Show the current schema version
  runs             List recorded extraction runs, newest first
  export <run-id>  Write a run's feature table back to CSV

Flags:
  --db <path>      Runs database path (default: features.db)
  --limit <n>      Maximum runs to list (default: 20)
  --out <file>     Export target (default: stdout)`)
}

func runMigrate(store *runstore.Store, direction string) error {
	switch direction {
	case "up":
		return store.MigrateUp()
	case "down":
		return store.MigrateDown()
	case "version":
		v, dirty, err := store.MigrateVersion()
		if err != nil {
			return err
		}
		if dirty {
			fmt.Printf("version %d (dirty)\n", v)
		} else {
			fmt.Printf("version %d\n", v)
		}
		return nil
	default:
		return fmt.Errorf("unknown direction %q (must be up, down, or version)", direction)
	}
}

func listRuns(store *runstore.Store, limit int) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Println(formatRun(r))
	}
	return nil
}

// formatRun renders one run as a fixed-layout listing line.
func formatRun(r *runstore.Run) string {
	created := time.Unix(r.CreatedUnix, 0).UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s  %-9s  %-9s  %4d samples  %4d features  %s",
		r.RunID, r.Mode, r.Status, r.SampleCount, r.FeatureCount, created)
	if r.Error != "" {
		line += "  error: " + r.Error
	}
	return line
}

func exportRun(store *runstore.Store, runID, output string) error {
	tbl, err := store.FeatureTable(runID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return tbl.WriteCSV(out)
}

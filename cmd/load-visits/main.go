// Command load-visits bulk-loads NPS monthly visitation CSVs into the
// database: regions from the reference config, park-to-region backfill, and
// monthly_visit rows. Safe to re-run; existing observations are replaced.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/edozal3/ED305Project/internal/ingest"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		dbURL      = flag.String("db", os.Getenv("DATABASE_URL"), "database DSN (SQLite path or postgres:// URL)")
		dataDir    = flag.String("data-dir", "data", "directory scanned for *.csv when no files are given")
		regionsCfg = flag.String("regions-config", "config/regions.yaml", "region reference YAML")
	)
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("no database DSN: set DATABASE_URL or pass --db")
	}

	csvs := flag.Args()
	if len(csvs) == 0 {
		matches, err := filepath.Glob(filepath.Join(*dataDir, "*.csv"))
		if err != nil {
			log.Fatal(err)
		}
		if len(matches) == 0 {
			log.Fatalf("no CSV files found in %s", *dataDir)
		}
		sort.Strings(matches)
		csvs = matches
	}

	summary, err := ingest.Run(ingest.Config{
		DatabaseURL:      *dbURL,
		CSVPaths:         csvs,
		RegionConfigPath: *regionsCfg,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Loaded %d monthly_visit rows (%d regions seeded, %d parks remapped)\n",
		summary.VisitsLoaded, summary.RegionsSeeded, summary.ParksRemapped)
	for _, name := range summary.UnmappedRegions {
		fmt.Printf("WARNING: unmapped region name %q (add it to the region config)\n", name)
	}
}

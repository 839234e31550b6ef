// Command fix-park-regions re-derives park.region_id from the visitation
// CSVs without reloading visit rows. Run it after fetch-parks, which leaves
// region_id NULL for every park it touches.
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

	summary, err := ingest.FixParkRegions(ingest.Config{
		DatabaseURL:      *dbURL,
		CSVPaths:         csvs,
		RegionConfigPath: *regionsCfg,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Updated region_id for %d parks\n", summary.ParksUpdated)
	for _, name := range summary.UnmappedRegions {
		fmt.Printf("WARNING: unmapped region name %q (add it to the region config)\n", name)
	}
	if len(summary.UnknownParks) > 0 {
		fmt.Printf("%d park codes from the CSVs are not in the park table:\n", len(summary.UnknownParks))
		for _, code := range summary.UnknownParks {
			fmt.Println(" -", code)
		}
	}
}

// Command fetch-parks pulls the park catalog (and optionally per-park
// boundary GeoJSON) from the NPS developer API into the park table.
// region_id is left NULL; run fix-park-regions or load-visits afterwards.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/edozal3/ED305Project/internal/db"
	"github.com/edozal3/ED305Project/internal/ingest"
	"github.com/edozal3/ED305Project/internal/npsapi"
	"github.com/edozal3/ED305Project/internal/visits"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		dbURL          = flag.String("db", os.Getenv("DATABASE_URL"), "database DSN (SQLite path or postgres:// URL)")
		skipBoundaries = flag.Bool("skip-boundaries", false, "skip the per-park boundary fetches (much faster)")
	)
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("no database DSN: set DATABASE_URL or pass --db")
	}

	client, err := npsapi.NewClient(npsapi.LoadFromEnv())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	started := time.Now()

	records, err := client.FetchParks(ctx)
	if err != nil {
		log.Fatal("Failed to fetch park catalog: ", err)
	}
	log.Printf("[fetch-parks] fetched %d parks from the NPS API", len(records))

	parks := make([]visits.Park, 0, len(records))
	for i, rec := range records {
		park := visits.Park{
			ParkCode:    rec.ParkCode,
			ParkName:    rec.ParkName,
			State:       rec.State,
			Designation: rec.Designation,
			Latitude:    rec.Latitude,
			Longitude:   rec.Longitude,
			Description: rec.Description,
			Website:     rec.Website,
		}

		if !*skipBoundaries {
			if i > 0 && i%50 == 0 {
				log.Printf("[fetch-parks] boundaries: %d/%d", i, len(records))
			}
			boundary, err := client.FetchBoundary(ctx, rec.ParkCode)
			if err != nil {
				// Boundaries are optional; a bad one shouldn't sink the run.
				log.Printf("[fetch-parks] skipping boundary for %s: %v", rec.ParkCode, err)
			} else if boundary != "" {
				park.Boundary = &boundary
			}
		}

		parks = append(parks, park)
	}

	gdb, err := db.Open(*dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := visits.Migrate(gdb); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	n, err := ingest.ImportParks(gdb, parks)
	if err != nil {
		log.Fatal(err)
	}

	audit := visits.LoadAudit{
		ID:         uuid.New(),
		Job:        "fetch-parks",
		Source:     "nps api",
		RowsLoaded: n,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := gdb.Create(&audit).Error; err != nil {
		log.Printf("[fetch-parks] WARNING: failed to write load_audit row: %v", err)
	}

	fmt.Printf("Upserted %d parks in %s\n", n, time.Since(started).Round(time.Second))
}

package ingest

import (
	"fmt"
	"log"
	"sort"

	"gorm.io/gorm"

	"github.com/edozal3/ED305Project/internal/db"
	"github.com/edozal3/ED305Project/internal/visits"
)

// BackfillSummary reports what a fix-park-regions run did.
type BackfillSummary struct {
	ParksUpdated    int
	UnknownParks    []string
	UnmappedRegions []string
}

// FixParkRegions re-derives park.region_id from the CSVs' park-to-region
// pairs without touching visit rows. Useful after re-fetching the park
// catalog, which leaves region_id NULL.
func FixParkRegions(cfg Config) (*BackfillSummary, error) {
	regionCfg, err := LoadRegionConfig(cfg.RegionConfigPath)
	if err != nil {
		return nil, err
	}

	parkRegion := map[string]string{}
	unmapped := map[string]bool{}
	for _, path := range cfg.CSVPaths {
		rows, err := ParseVisitsCSV(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, r := range rows {
			id, ok := regionCfg.IDForName(r.Region)
			if !ok {
				unmapped[CleanRegionName(r.Region)] = true
				continue
			}
			parkRegion[r.ParkCode] = id
		}
	}

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := visits.Migrate(gdb); err != nil {
		return nil, err
	}

	summary := &BackfillSummary{}
	for name := range unmapped {
		summary.UnmappedRegions = append(summary.UnmappedRegions, name)
	}
	sort.Strings(summary.UnmappedRegions)

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if _, err := SeedRegions(tx, regionCfg); err != nil {
			return err
		}

		for parkCode, regionID := range parkRegion {
			res := tx.Model(&visits.Park{}).
				Where("park_code = ?", parkCode).
				Update("region_id", regionID)
			if res.Error != nil {
				return fmt.Errorf("update park %s: %w", parkCode, res.Error)
			}
			if res.RowsAffected == 0 {
				summary.UnknownParks = append(summary.UnknownParks, parkCode)
			} else {
				summary.ParksUpdated += int(res.RowsAffected)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(summary.UnknownParks)
	log.Printf("[fix-park-regions] updated region_id for %d parks (%d codes not in park table)",
		summary.ParksUpdated, len(summary.UnknownParks))
	return summary, nil
}

package ingest

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edozal3/ED305Project/internal/db"
	"github.com/edozal3/ED305Project/internal/visits"
)

// Config drives one run of the visits loader.
type Config struct {
	DatabaseURL      string
	CSVPaths         []string
	RegionConfigPath string
}

// Summary reports what a loader run did.
type Summary struct {
	RegionsSeeded   int
	ParksRemapped   int
	VisitsLoaded    int
	UnmappedRegions []string
}

// Run bulk-loads monthly visit CSVs: seeds the region table from the region
// config, backfills park.region_id from the CSV's park-to-region pairs, and
// upserts monthly_visit rows. Re-runs are idempotent. The whole load is one
// transaction, with a load_audit row recording the run.
func Run(cfg Config) (*Summary, error) {
	if len(cfg.CSVPaths) == 0 {
		return nil, errors.New("no CSV files to load")
	}

	regionCfg, err := LoadRegionConfig(cfg.RegionConfigPath)
	if err != nil {
		return nil, err
	}

	var rows []VisitRow
	for _, path := range cfg.CSVPaths {
		parsed, err := ParseVisitsCSV(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Printf("[load-visits] parsed %d rows from %s", len(parsed), path)
		rows = append(rows, parsed...)
	}

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := visits.Migrate(gdb); err != nil {
		return nil, err
	}

	started := time.Now()
	summary := &Summary{}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		n, err := SeedRegions(tx, regionCfg)
		if err != nil {
			return err
		}
		summary.RegionsSeeded = n

		// Park-to-region pairs from the CSV, for backfilling park.region_id.
		parkRegion := map[string]string{}
		unmapped := map[string]bool{}
		for _, r := range rows {
			id, ok := regionCfg.IDForName(r.Region)
			if !ok {
				unmapped[CleanRegionName(r.Region)] = true
				continue
			}
			parkRegion[r.ParkCode] = id
		}
		for name := range unmapped {
			summary.UnmappedRegions = append(summary.UnmappedRegions, name)
		}
		sort.Strings(summary.UnmappedRegions)

		for parkCode, regionID := range parkRegion {
			res := tx.Model(&visits.Park{}).
				Where("park_code = ?", parkCode).
				Update("region_id", regionID)
			if res.Error != nil {
				return fmt.Errorf("update park %s: %w", parkCode, res.Error)
			}
			summary.ParksRemapped += int(res.RowsAffected)
		}

		mvs := make([]visits.MonthlyVisit, 0, len(rows))
		for _, r := range rows {
			mvs = append(mvs, visits.MonthlyVisit{
				ParkCode:                    r.ParkCode,
				Year:                        r.Year,
				Month:                       r.Month,
				RecreationVisits:            r.RecreationVisits,
				NonRecreationVisits:         r.NonRecreationVisits,
				TotalVisits:                 totalVisits(r.RecreationVisits, r.NonRecreationVisits),
				ConcessionerLodging:         r.ConcessionerLodging,
				ConcessionerCamping:         r.ConcessionerCamping,
				TentCampers:                 r.TentCampers,
				RVCampers:                   r.RVCampers,
				Backcountry:                 r.Backcountry,
				NonRecreationOvernightStays: r.NonRecreationOvernightStays,
				MiscellaneousOvernightStays: r.MiscellaneousOvernightStays,
			})
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "park_code"}, {Name: "year"}, {Name: "month"},
			},
			UpdateAll: true,
		}).CreateInBatches(&mvs, 500).Error; err != nil {
			return fmt.Errorf("insert monthly_visit rows: %w", err)
		}
		summary.VisitsLoaded = len(mvs)

		audit := visits.LoadAudit{
			ID:         uuid.New(),
			Job:        "load-visits",
			Source:     fmt.Sprintf("%d csv file(s)", len(cfg.CSVPaths)),
			RowsLoaded: summary.VisitsLoaded,
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("insert load_audit row: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range summary.UnmappedRegions {
		log.Printf("[load-visits] WARNING: region name %q is not in the region config", name)
	}
	log.Printf("[load-visits] seeded %d regions, remapped %d parks, loaded %d monthly_visit rows in %dms",
		summary.RegionsSeeded, summary.ParksRemapped, summary.VisitsLoaded,
		time.Since(started).Milliseconds())

	return summary, nil
}

// SeedRegions upserts the region reference rows. Existing rows are updated
// in place so a config change propagates on re-run.
func SeedRegions(tx *gorm.DB, cfg *RegionConfig) (int, error) {
	regions := make([]visits.Region, 0, len(cfg.Regions))
	for _, r := range cfg.Regions {
		regions = append(regions, visits.Region{
			RegionID:    r.ID,
			RegionName:  r.Name,
			Description: r.Description,
		})
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "region_id"}},
		UpdateAll: true,
	}).Create(&regions).Error; err != nil {
		return 0, fmt.Errorf("seed regions: %w", err)
	}
	return len(regions), nil
}

// totalVisits derives total_visits from the two component measures: the sum
// when both are present, the one present otherwise, NULL when neither is.
func totalVisits(rec, nonRec *int64) *int64 {
	if rec == nil && nonRec == nil {
		return nil
	}
	var t int64
	if rec != nil {
		t += *rec
	}
	if nonRec != nil {
		t += *nonRec
	}
	return &t
}

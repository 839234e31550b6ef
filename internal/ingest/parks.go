package ingest

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edozal3/ED305Project/internal/visits"
)

// ImportParks upserts park catalog rows fetched from the NPS API. region_id
// is deliberately left out of the update set: the catalog doesn't know
// regions, and clobbering the CSV-derived mapping on a re-fetch would orphan
// every park from its region until the next backfill.
func ImportParks(tx *gorm.DB, parks []visits.Park) (int, error) {
	if len(parks) == 0 {
		return 0, nil
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "park_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"park_name", "state", "designation",
			"latitude", "longitude", "description", "website", "boundary",
		}),
	}).CreateInBatches(&parks, 200).Error; err != nil {
		return 0, fmt.Errorf("upsert parks: %w", err)
	}
	return len(parks), nil
}

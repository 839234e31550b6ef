package visits

import (
	"time"

	"github.com/google/uuid"
)

// Region is one of the NPS administrative regions. Seeded once from the
// region reference config and immutable afterwards.
type Region struct {
	RegionID    string  `json:"region_id" gorm:"primaryKey;size:8"`
	RegionName  string  `json:"region_name"`
	Description *string `json:"description,omitempty"`

	Parks []Park `json:"-" gorm:"foreignKey:RegionID"`
}

// Park is a unit from the NPS park catalog. Created and updated by the
// fetch-parks job; read-only to the query engine.
type Park struct {
	ParkCode    string   `json:"park_code" gorm:"primaryKey;size:8"`
	ParkName    string   `json:"park_name"`
	State       string   `json:"state"`
	Designation string   `json:"designation"`
	RegionID    *string  `json:"region_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description *string  `json:"description,omitempty"`
	Website     *string  `json:"website,omitempty"`
	// Boundary holds the park boundary as GeoJSON text, when the NPS
	// mapdata API had one.
	Boundary *string `json:"boundary,omitempty"`

	MonthlyVisits []MonthlyVisit `json:"-" gorm:"foreignKey:ParkCode"`
}

// MonthlyVisit is one observation of the visitor statistics for a park in a
// given month. All measures are nullable: a missing cell in the source CSV is
// stored as NULL, never as zero, so averages and variability are computed
// over observed months only.
type MonthlyVisit struct {
	ParkCode string `json:"park_code" gorm:"primaryKey;size:8"`
	Year     int    `json:"year" gorm:"primaryKey"`
	Month    int    `json:"month" gorm:"primaryKey"`

	RecreationVisits            *int64 `json:"recreation_visits" gorm:"column:recreation_visits"`
	NonRecreationVisits         *int64 `json:"non_recreation_visits" gorm:"column:non_recreation_visits"`
	TotalVisits                 *int64 `json:"total_visits" gorm:"column:total_visits"`
	ConcessionerLodging         *int64 `json:"concessioner_lodging" gorm:"column:concessioner_lodging"`
	ConcessionerCamping         *int64 `json:"concessioner_camping" gorm:"column:concessioner_camping"`
	TentCampers                 *int64 `json:"tent_campers" gorm:"column:tent_campers"`
	RVCampers                   *int64 `json:"rv_campers" gorm:"column:rv_campers"`
	Backcountry                 *int64 `json:"backcountry" gorm:"column:backcountry"`
	NonRecreationOvernightStays *int64 `json:"nonrecreation_overnight_stays" gorm:"column:nonrecreation_overnight_stays"`
	MiscellaneousOvernightStays *int64 `json:"miscellaneous_overnight_stays" gorm:"column:miscellaneous_overnight_stays"`
}

// LoadAudit records one run of an ingestion job, so idempotent re-runs are
// visible after the fact.
type LoadAudit struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Job        string    `json:"job"`
	Source     string    `json:"source"`
	RowsLoaded int       `json:"rows_loaded"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (Region) TableName() string {
	return "region"
}

func (Park) TableName() string {
	return "park"
}

func (MonthlyVisit) TableName() string {
	return "monthly_visit"
}

func (LoadAudit) TableName() string {
	return "load_audit"
}

package visits

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Engine computes the analytical result sets over region/park/monthly_visit.
// It only ever reads; every method is a single bounded aggregation pass
// (AboveAverage is two passes: baseline mean, then threshold scan).
//
// Cross-cutting ranking contract: rows are ordered by the query's ranking
// metric descending, ties broken by park_code ascending. Results spanning
// several regions are never grouped by region; region membership is carried
// as a display attribute only.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Filter is the common filter contract shared by the park-ranking queries.
type Filter struct {
	// Regions restricts results to parks in these regions. Empty means all
	// regions (the "all" sentinel at the HTTP boundary).
	Regions []string
	// Parks restricts results to exactly these park codes, intersected with
	// the region filter.
	Parks []string
	// NameQuery is a case-insensitive substring match on park_name.
	NameQuery string
	// Limit caps returned rows after sorting. Zero means no cap.
	Limit int
}

// YearBounds is the span of years present in monthly_visit.
type YearBounds struct {
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}

// YearBounds reports the min and max year loaded into monthly_visit, so
// callers can build year selectors without hardcoded bounds. Returns
// ErrNoData when the table is empty.
func (e *Engine) YearBounds() (YearBounds, error) {
	var row struct {
		MinYear *int
		MaxYear *int
	}
	err := e.db.Raw(`SELECT MIN(year) AS min_year, MAX(year) AS max_year FROM monthly_visit`).Scan(&row).Error
	if err != nil {
		return YearBounds{}, err
	}
	if row.MinYear == nil || row.MaxYear == nil {
		return YearBounds{}, ErrNoData
	}
	return YearBounds{MinYear: *row.MinYear, MaxYear: *row.MaxYear}, nil
}

// ListRegions returns all regions ordered by region_id.
func (e *Engine) ListRegions() ([]Region, error) {
	regions := []Region{}
	if err := e.db.Order("region_id").Find(&regions).Error; err != nil {
		return nil, err
	}
	return regions, nil
}

// ParkDetail is the full park record including the boundary GeoJSON, used by
// the map view.
type ParkDetail struct {
	ParkCode    string   `json:"park_code"`
	ParkName    string   `json:"park_name"`
	State       string   `json:"state"`
	Designation string   `json:"designation"`
	RegionID    *string  `json:"region_id"`
	RegionName  *string  `json:"region_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description *string  `json:"description"`
	Website     *string  `json:"website"`
	Boundary    *string  `json:"boundary"`
}

// ParkDetails looks up one park by code. Returns ErrParkNotFound for an
// unknown code.
func (e *Engine) ParkDetails(parkCode string) (ParkDetail, error) {
	var row ParkDetail
	err := e.db.Raw(`
		SELECT p.park_code, p.park_name, p.state, p.designation,
		       r.region_id, r.region_name,
		       p.latitude, p.longitude, p.description, p.website, p.boundary
		FROM park p
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE p.park_code = ?
	`, parkCode).Scan(&row).Error
	if err != nil {
		return ParkDetail{}, err
	}
	if row.ParkCode == "" {
		return ParkDetail{}, fmt.Errorf("%w: %s", ErrParkNotFound, parkCode)
	}
	return row, nil
}

// ---------------------------------------------------------------------------
// Q1: monthly series for one park and year

type MonthlySeriesParams struct {
	ParkCode  string
	Year      int
	Threshold int64
}

type MonthlySeriesRow struct {
	Month          int   `json:"month"`
	TotalVisits    int64 `json:"total_visits"`
	AboveThreshold bool  `json:"above_threshold"`
}

// MonthlySeries returns the per-month total visits for one park and year,
// flagging months at or above the demand threshold. Months without an
// observed total are absent from the series. An empty series for a known
// park is a valid result.
func (e *Engine) MonthlySeries(p MonthlySeriesParams) ([]MonthlySeriesRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if err := e.checkPark(p.ParkCode); err != nil {
		return nil, err
	}

	var raw []struct {
		Month       int
		TotalVisits int64
	}
	err := e.db.Raw(`
		SELECT month, total_visits
		FROM monthly_visit
		WHERE park_code = ? AND year = ? AND total_visits IS NOT NULL
		ORDER BY month
	`, p.ParkCode, p.Year).Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	out := make([]MonthlySeriesRow, 0, len(raw))
	for _, r := range raw {
		out = append(out, MonthlySeriesRow{
			Month:          r.Month,
			TotalVisits:    r.TotalVisits,
			AboveThreshold: r.TotalVisits >= p.Threshold,
		})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Q2: annual total visits per park for one year

type AnnualByParkParams struct {
	Year   int
	Filter Filter
	// MinTotal drops parks whose annual sum is below it, when set.
	MinTotal *int64
}

type AnnualParkRow struct {
	ParkCode          string   `json:"park_code"`
	ParkName          string   `json:"park_name"`
	State             string   `json:"state"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	RegionID          *string  `json:"region_id"`
	RegionName        *string  `json:"region_name"`
	Year              int      `json:"year"`
	AnnualTotalVisits int64    `json:"annual_total_visits"`
}

// AnnualByPark sums total_visits per park for one year across the selected
// regions, ranked by the annual sum.
func (e *Engine) AnnualByPark(p AnnualByParkParams) ([]AnnualParkRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Filter.Regions); err != nil {
		return nil, err
	}

	where := []string{"mv.year = ?"}
	args := []any{p.Year}
	where, args = appendFilter(where, args, p.Filter)

	having := "HAVING SUM(mv.total_visits) IS NOT NULL"
	if p.MinTotal != nil {
		having += " AND SUM(mv.total_visits) >= ?"
		args = append(args, *p.MinTotal)
	}

	sql := `
		SELECT p.park_code, p.park_name, p.state, p.latitude, p.longitude,
		       r.region_id, r.region_name,
		       SUM(mv.total_visits) AS annual_total_visits
		FROM park p
		JOIN monthly_visit mv ON mv.park_code = p.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.park_code, p.park_name, p.state, p.latitude, p.longitude,
		         r.region_id, r.region_name
		` + having + `
		ORDER BY annual_total_visits DESC, p.park_code ASC`
	sql, args = applyLimit(sql, args, p.Filter.Limit)

	rows := []AnnualParkRow{}
	if err := e.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Year = p.Year
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Q3: average monthly visits per park over an inclusive year range

type AvgMonthlyParams struct {
	StartYear int
	EndYear   int
	Filter    Filter
}

type AvgMonthlyRow struct {
	ParkCode         string  `json:"park_code"`
	ParkName         string  `json:"park_name"`
	RegionID         *string `json:"region_id"`
	RegionName       *string `json:"region_name"`
	StartYear        int     `json:"start_year"`
	EndYear          int     `json:"end_year"`
	AvgMonthlyVisits float64 `json:"avg_monthly_visits"`
	MonthsWithData   int     `json:"months_with_data"`
}

// AvgMonthly averages total_visits per park over [StartYear, EndYear].
// Months without an observed total are excluded from both the numerator and
// the denominator, so missing data never deflates an average.
func (e *Engine) AvgMonthly(p AvgMonthlyParams) ([]AvgMonthlyRow, error) {
	if err := validRange(p.StartYear, p.EndYear); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Filter.Regions); err != nil {
		return nil, err
	}

	where := []string{"mv.year BETWEEN ? AND ?"}
	args := []any{p.StartYear, p.EndYear}
	where, args = appendFilter(where, args, p.Filter)

	sql := `
		SELECT p.park_code, p.park_name, r.region_id, r.region_name,
		       AVG(mv.total_visits) AS avg_monthly_visits,
		       COUNT(mv.total_visits) AS months_with_data
		FROM park p
		JOIN monthly_visit mv ON mv.park_code = p.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.park_code, p.park_name, r.region_id, r.region_name
		HAVING COUNT(mv.total_visits) > 0
		ORDER BY avg_monthly_visits DESC, p.park_code ASC`
	sql, args = applyLimit(sql, args, p.Filter.Limit)

	rows := []AvgMonthlyRow{}
	if err := e.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].StartYear = p.StartYear
		rows[i].EndYear = p.EndYear
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Q4: peak-season (Jun-Aug) total above threshold

type PeakSeasonParams struct {
	Year      int
	Threshold int64
	Regions   []string
}

type PeakSeasonRow struct {
	ParkCode         string  `json:"park_code"`
	ParkName         string  `json:"park_name"`
	RegionID         *string `json:"region_id"`
	RegionName       *string `json:"region_name"`
	Year             int     `json:"year"`
	PeakSeasonVisits int64   `json:"peak_season_visits"`
}

// PeakSeason sums total_visits over June-August per park and keeps parks
// whose peak-season sum is strictly greater than the threshold.
func (e *Engine) PeakSeason(p PeakSeasonParams) ([]PeakSeasonRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Regions); err != nil {
		return nil, err
	}

	where := []string{"mv.year = ?", "mv.month IN (6, 7, 8)"}
	args := []any{p.Year}
	where, args = appendRegions(where, args, p.Regions)

	sql := `
		SELECT p.park_code, p.park_name, r.region_id, r.region_name,
		       SUM(mv.total_visits) AS peak_season_visits
		FROM park p
		JOIN monthly_visit mv ON mv.park_code = p.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.park_code, p.park_name, r.region_id, r.region_name
		HAVING SUM(mv.total_visits) > ?
		ORDER BY peak_season_visits DESC, p.park_code ASC`
	args = append(args, p.Threshold)

	rows := []PeakSeasonRow{}
	if err := e.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Year = p.Year
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Q5: parks above the comparison-set average annual visits

type AboveAverageParams struct {
	Year   int
	Filter Filter
}

type AboveAverageRow struct {
	ParkCode           string  `json:"park_code"`
	ParkName           string  `json:"park_name"`
	RegionID           *string `json:"region_id"`
	RegionName         *string `json:"region_name"`
	Year               int     `json:"year"`
	AnnualTotalVisits  int64   `json:"annual_total_visits"`
	ComparisonMean     float64 `json:"comparison_mean_visits"`
	DifferenceFromMean float64 `json:"difference_from_mean"`
	PctAboveMean       float64 `json:"pct_above_mean"`
}

// AboveAverage returns parks whose annual sum exceeds the mean annual sum of
// the comparison set: system-wide when no regions are selected, otherwise all
// parks in the selected regions. The mean is recomputed on every call; the
// park-code and name filters narrow the output but never the comparison set.
func (e *Engine) AboveAverage(p AboveAverageParams) ([]AboveAverageRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Filter.Regions); err != nil {
		return nil, err
	}

	// Pass 1: the baseline mean over the full comparison set.
	baseWhere := []string{"mv.year = ?"}
	baseArgs := []any{p.Year}
	baseWhere, baseArgs = appendRegions(baseWhere, baseArgs, p.Filter.Regions)

	var totals []int64
	err := e.db.Raw(`
		SELECT SUM(mv.total_visits) AS annual_total
		FROM monthly_visit mv
		JOIN park p ON p.park_code = mv.park_code
		WHERE `+strings.Join(baseWhere, " AND ")+`
		GROUP BY mv.park_code
		HAVING SUM(mv.total_visits) IS NOT NULL
	`, baseArgs...).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return []AboveAverageRow{}, nil
	}

	var sum int64
	for _, t := range totals {
		sum += t
	}
	mean := float64(sum) / float64(len(totals))
	if mean == 0 {
		return []AboveAverageRow{}, nil
	}

	// Pass 2: parks strictly above the mean, with the narrowing filters.
	where := []string{"mv.year = ?"}
	args := []any{p.Year}
	where, args = appendFilter(where, args, p.Filter)

	sql := `
		SELECT p.park_code, p.park_name, r.region_id, r.region_name,
		       SUM(mv.total_visits) AS annual_total_visits
		FROM park p
		JOIN monthly_visit mv ON mv.park_code = p.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.park_code, p.park_name, r.region_id, r.region_name
		HAVING SUM(mv.total_visits) > ?
		ORDER BY annual_total_visits DESC, p.park_code ASC`
	args = append(args, mean)
	sql, args = applyLimit(sql, args, p.Filter.Limit)

	rows := []AboveAverageRow{}
	if err := e.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Year = p.Year
		rows[i].ComparisonMean = mean
		rows[i].DifferenceFromMean = float64(rows[i].AnnualTotalVisits) - mean
		rows[i].PctAboveMean = (float64(rows[i].AnnualTotalVisits) - mean) / mean * 100
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Q6: top N parks by annual visits, flat ranking across regions

type TopParksParams struct {
	Year      int
	Limit     int
	Regions   []string
	NameQuery string
}

type TopParkRow struct {
	Rank              int     `json:"rank"`
	ParkCode          string  `json:"park_code"`
	ParkName          string  `json:"park_name"`
	RegionID          *string `json:"region_id"`
	RegionName        *string `json:"region_name"`
	Year              int     `json:"year"`
	AnnualTotalVisits int64   `json:"annual_total_visits"`
}

// TopParks ranks parks by annual total visits in a single flat ordering over
// the selected scope. Rank is relative to the scope, so a name-filtered
// response still reports each park's position in the full ranking.
func (e *Engine) TopParks(p TopParksParams) ([]TopParkRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Regions); err != nil {
		return nil, err
	}

	where := []string{"mv.year = ?"}
	args := []any{p.Year}
	where, args = appendRegions(where, args, p.Regions)

	var ranked []TopParkRow
	err := e.db.Raw(`
		SELECT p.park_code, p.park_name, r.region_id, r.region_name,
		       SUM(mv.total_visits) AS annual_total_visits
		FROM park p
		JOIN monthly_visit mv ON mv.park_code = p.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE `+strings.Join(where, " AND ")+`
		GROUP BY p.park_code, p.park_name, r.region_id, r.region_name
		HAVING SUM(mv.total_visits) IS NOT NULL
		ORDER BY annual_total_visits DESC, p.park_code ASC
	`, args...).Scan(&ranked).Error
	if err != nil {
		return nil, err
	}

	nameQuery := strings.ToLower(p.NameQuery)
	out := make([]TopParkRow, 0, p.Limit)
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Year = p.Year
		if nameQuery != "" && !strings.Contains(strings.ToLower(ranked[i].ParkName), nameQuery) {
			continue
		}
		out = append(out, ranked[i])
		if p.Limit > 0 && len(out) >= p.Limit {
			break
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Q7: annual total visits by region

type AnnualByRegionParams struct {
	Year    int
	Regions []string
}

type RegionAnnualRow struct {
	Rank              int    `json:"rank"`
	RegionID          string `json:"region_id"`
	RegionName        string `json:"region_name"`
	Year              int    `json:"year"`
	AnnualTotalVisits int64  `json:"annual_total_visits"`
}

// AnnualByRegion sums total_visits per region for one year. Every selected
// region appears exactly once, with a zero total when it has no data.
func (e *Engine) AnnualByRegion(p AnnualByRegionParams) ([]RegionAnnualRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Regions); err != nil {
		return nil, err
	}

	where := ""
	args := []any{p.Year}
	if len(p.Regions) > 0 {
		where = "WHERE r.region_id IN ?"
		args = append(args, p.Regions)
	}

	rows := []RegionAnnualRow{}
	err := e.db.Raw(`
		SELECT r.region_id, r.region_name,
		       COALESCE(SUM(mv.total_visits), 0) AS annual_total_visits
		FROM region r
		LEFT JOIN park p ON p.region_id = r.region_id
		LEFT JOIN monthly_visit mv ON mv.park_code = p.park_code AND mv.year = ?
		`+where+`
		GROUP BY r.region_id, r.region_name
		ORDER BY annual_total_visits DESC, r.region_id ASC
	`, args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Year = p.Year
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Q8: month-to-month change for one park and year

type MonthChangeParams struct {
	ParkCode string
	Year     int
}

type MonthChangeRow struct {
	Month       int     `json:"month"`
	TotalVisits int64   `json:"total_visits"`
	Delta       int64   `json:"change_from_previous"`
	PctChange   float64 `json:"pct_change"`
}

// MonthChange computes delta[m] = visits[m] - visits[m-1] and the matching
// percentage within one year. January has no prior month inside the year and
// is never emitted; a month whose predecessor is missing or zero is dropped
// rather than reported with an undefined percentage.
func (e *Engine) MonthChange(p MonthChangeParams) ([]MonthChangeRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if err := e.checkPark(p.ParkCode); err != nil {
		return nil, err
	}

	var raw []struct {
		Month       int
		TotalVisits int64
	}
	err := e.db.Raw(`
		SELECT month, total_visits
		FROM monthly_visit
		WHERE park_code = ? AND year = ? AND total_visits IS NOT NULL
		ORDER BY month
	`, p.ParkCode, p.Year).Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	byMonth := make(map[int]int64, len(raw))
	for _, r := range raw {
		byMonth[r.Month] = r.TotalVisits
	}

	out := make([]MonthChangeRow, 0, 11)
	for m := 2; m <= 12; m++ {
		cur, ok := byMonth[m]
		if !ok {
			continue
		}
		prev, ok := byMonth[m-1]
		if !ok || prev == 0 {
			continue
		}
		delta := cur - prev
		out = append(out, MonthChangeRow{
			Month:       m,
			TotalVisits: cur,
			Delta:       delta,
			PctChange:   float64(delta) / float64(prev) * 100,
		})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Q9: highest percentage growth between two years

type GrowthParams struct {
	StartYear int
	EndYear   int
	Regions   []string
}

type GrowthRow struct {
	ParkCode   string  `json:"park_code"`
	ParkName   string  `json:"park_name"`
	RegionID   *string `json:"region_id"`
	RegionName *string `json:"region_name"`
	StartYear  int     `json:"start_year"`
	EndYear    int     `json:"end_year"`
	StartTotal int64   `json:"start_total"`
	EndTotal   int64   `json:"end_total"`
	GrowthPct  float64 `json:"growth_percent"`
}

// Growth ranks parks by percentage growth of annual visits between StartYear
// and EndYear. Parks with a zero or missing baseline-year sum have undefined
// growth and are excluded, as are parks with no end-year observations.
func (e *Engine) Growth(p GrowthParams) ([]GrowthRow, error) {
	if p.StartYear >= p.EndYear {
		return nil, invalidParam("start_year", "must be before end_year")
	}
	if err := validYear(p.StartYear); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Regions); err != nil {
		return nil, err
	}

	where := []string{"mv.year IN ?"}
	args := []any{[]int{p.StartYear, p.EndYear}}
	where, args = appendRegions(where, args, p.Regions)

	var raw []struct {
		ParkCode    string
		ParkName    string
		RegionID    *string
		RegionName  *string
		Year        int
		AnnualTotal *int64
	}
	err := e.db.Raw(`
		SELECT p.park_code, p.park_name, r.region_id, r.region_name,
		       mv.year, SUM(mv.total_visits) AS annual_total
		FROM monthly_visit mv
		JOIN park p ON p.park_code = mv.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE `+strings.Join(where, " AND ")+`
		GROUP BY p.park_code, p.park_name, r.region_id, r.region_name, mv.year
	`, args...).Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	type pair struct {
		row   GrowthRow
		start *int64
		end   *int64
	}
	byPark := make(map[string]*pair)
	for _, r := range raw {
		pr, ok := byPark[r.ParkCode]
		if !ok {
			pr = &pair{row: GrowthRow{
				ParkCode:   r.ParkCode,
				ParkName:   r.ParkName,
				RegionID:   r.RegionID,
				RegionName: r.RegionName,
				StartYear:  p.StartYear,
				EndYear:    p.EndYear,
			}}
			byPark[r.ParkCode] = pr
		}
		switch r.Year {
		case p.StartYear:
			pr.start = r.AnnualTotal
		case p.EndYear:
			pr.end = r.AnnualTotal
		}
	}

	out := make([]GrowthRow, 0, len(byPark))
	for _, pr := range byPark {
		// Zero or absent baseline means growth is undefined for the park.
		if pr.start == nil || *pr.start == 0 || pr.end == nil {
			continue
		}
		pr.row.StartTotal = *pr.start
		pr.row.EndTotal = *pr.end
		pr.row.GrowthPct = float64(*pr.end-*pr.start) / float64(*pr.start) * 100
		out = append(out, pr.row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GrowthPct != out[j].GrowthPct {
			return out[i].GrowthPct > out[j].GrowthPct
		}
		return out[i].ParkCode < out[j].ParkCode
	})
	return out, nil
}

// ---------------------------------------------------------------------------
// Q10: variability (sample standard deviation) of monthly visits

type VariabilityParams struct {
	StartYear int
	EndYear   int
	Filter    Filter
}

type VariabilityRow struct {
	ParkCode            string  `json:"park_code"`
	ParkName            string  `json:"park_name"`
	RegionID            *string `json:"region_id"`
	RegionName          *string `json:"region_name"`
	StartYear           int     `json:"start_year"`
	EndYear             int     `json:"end_year"`
	AvgMonthlyVisits    float64 `json:"avg_monthly_visits"`
	StdDevMonthlyVisits float64 `json:"std_dev_monthly_visits"`
	MonthsWithData      int     `json:"months_with_data"`
}

// Variability ranks parks by the sample standard deviation (n-1 denominator)
// of their observed monthly totals over the year range. Months with missing
// data are excluded from the sample; parks with fewer than two observed
// months have no defined deviation and are dropped.
func (e *Engine) Variability(p VariabilityParams) ([]VariabilityRow, error) {
	if err := validRange(p.StartYear, p.EndYear); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Filter.Regions); err != nil {
		return nil, err
	}

	where := []string{"mv.year BETWEEN ? AND ?"}
	args := []any{p.StartYear, p.EndYear}
	where, args = appendFilter(where, args, p.Filter)

	var raw []struct {
		ParkCode   string
		ParkName   string
		RegionID   *string
		RegionName *string
		N          int
		SumV       float64
		SumV2      float64
	}
	err := e.db.Raw(`
		SELECT p.park_code, p.park_name, r.region_id, r.region_name,
		       COUNT(mv.total_visits) AS n,
		       COALESCE(SUM(mv.total_visits), 0) AS sum_v,
		       COALESCE(SUM(mv.total_visits * mv.total_visits), 0) AS sum_v2
		FROM park p
		JOIN monthly_visit mv ON mv.park_code = p.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE `+strings.Join(where, " AND ")+`
		GROUP BY p.park_code, p.park_name, r.region_id, r.region_name
		HAVING COUNT(mv.total_visits) >= 2
	`, args...).Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	out := make([]VariabilityRow, 0, len(raw))
	for _, r := range raw {
		n := float64(r.N)
		mean := r.SumV / n
		// Sample variance from power sums: (sum(v^2) - n*mean^2) / (n-1).
		variance := (r.SumV2 - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		out = append(out, VariabilityRow{
			ParkCode:            r.ParkCode,
			ParkName:            r.ParkName,
			RegionID:            r.RegionID,
			RegionName:          r.RegionName,
			StartYear:           p.StartYear,
			EndYear:             p.EndYear,
			AvgMonthlyVisits:    mean,
			StdDevMonthlyVisits: math.Sqrt(variance),
			MonthsWithData:      r.N,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StdDevMonthlyVisits != out[j].StdDevMonthlyVisits {
			return out[i].StdDevMonthlyVisits > out[j].StdDevMonthlyVisits
		}
		return out[i].ParkCode < out[j].ParkCode
	})
	if p.Filter.Limit > 0 && len(out) > p.Filter.Limit {
		out = out[:p.Filter.Limit]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Metrics explorer: annual sum of any single measure column per park

type MetricTotalsParams struct {
	Year    int
	Metric  Metric
	Regions []string
	Limit   int
}

type MetricTotalRow struct {
	ParkCode    string  `json:"park_code"`
	ParkName    string  `json:"park_name"`
	RegionID    *string `json:"region_id"`
	RegionName  *string `json:"region_name"`
	Year        int     `json:"year"`
	Metric      Metric  `json:"metric"`
	MetricTotal int64   `json:"metric_total"`
}

// MetricTotals is the generic ranking over a selected measure column, with
// the same filter and ordering contract as AnnualByPark.
func (e *Engine) MetricTotals(p MetricTotalsParams) ([]MetricTotalRow, error) {
	if err := validYear(p.Year); err != nil {
		return nil, err
	}
	if _, err := ParseMetric(string(p.Metric)); err != nil {
		return nil, err
	}
	if err := e.checkRegions(p.Regions); err != nil {
		return nil, err
	}

	where := []string{"mv.year = ?"}
	args := []any{p.Year}
	where, args = appendRegions(where, args, p.Regions)

	col := p.Metric.Column()
	sql := `
		SELECT p.park_code, p.park_name, r.region_id, r.region_name,
		       SUM(mv.` + col + `) AS metric_total
		FROM park p
		JOIN monthly_visit mv ON mv.park_code = p.park_code
		LEFT JOIN region r ON r.region_id = p.region_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.park_code, p.park_name, r.region_id, r.region_name
		HAVING SUM(mv.` + col + `) IS NOT NULL
		ORDER BY metric_total DESC, p.park_code ASC`
	sql, args = applyLimit(sql, args, p.Limit)

	rows := []MetricTotalRow{}
	if err := e.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Year = p.Year
		rows[i].Metric = p.Metric
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// shared filter plumbing

func validYear(year int) error {
	if year < 1 {
		return invalidParam("year", "must be a positive year")
	}
	return nil
}

func validRange(start, end int) error {
	if start < 1 {
		return invalidParam("start_year", "must be a positive year")
	}
	if start > end {
		return invalidParam("start_year", "must not be after end_year")
	}
	return nil
}

func appendRegions(where []string, args []any, regions []string) ([]string, []any) {
	if len(regions) > 0 {
		where = append(where, "p.region_id IN ?")
		args = append(args, regions)
	}
	return where, args
}

func appendFilter(where []string, args []any, f Filter) ([]string, []any) {
	where, args = appendRegions(where, args, f.Regions)
	if len(f.Parks) > 0 {
		where = append(where, "p.park_code IN ?")
		args = append(args, f.Parks)
	}
	if f.NameQuery != "" {
		where = append(where, "LOWER(p.park_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.NameQuery)+"%")
	}
	return where, args
}

func applyLimit(sql string, args []any, limit int) (string, []any) {
	if limit > 0 {
		sql += " LIMIT ?"
		args = append(args, limit)
	}
	return sql, args
}

// checkPark verifies a park code exists, so callers can tell "unknown park"
// apart from "known park with zero matching rows".
func (e *Engine) checkPark(parkCode string) error {
	if parkCode == "" {
		return invalidParam("park_code", "must not be empty")
	}
	var n int64
	if err := e.db.Model(&Park{}).Where("park_code = ?", parkCode).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrParkNotFound, parkCode)
	}
	return nil
}

// checkRegions verifies every requested region ID exists.
func (e *Engine) checkRegions(regions []string) error {
	if len(regions) == 0 {
		return nil
	}
	var found []string
	if err := e.db.Model(&Region{}).Where("region_id IN ?", regions).Pluck("region_id", &found).Error; err != nil {
		return err
	}
	if len(found) != len(regions) {
		known := make(map[string]bool, len(found))
		for _, id := range found {
			known[id] = true
		}
		for _, id := range regions {
			if !known[id] {
				return fmt.Errorf("%w: %s", ErrRegionNotFound, id)
			}
		}
	}
	return nil
}

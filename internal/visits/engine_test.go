package visits

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestEngine opens a fresh in-memory SQLite database with the schema
// applied. Each test gets its own database.
func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))
	return NewEngine(gdb), gdb
}

func i64(v int64) *int64 { return &v }

func seedRegion(t *testing.T, gdb *gorm.DB, id, name string) {
	t.Helper()
	require.NoError(t, gdb.Create(&Region{RegionID: id, RegionName: name}).Error)
}

func seedPark(t *testing.T, gdb *gorm.DB, code, name, regionID string) {
	t.Helper()
	park := Park{ParkCode: code, ParkName: name, State: "XX", Designation: "National Park"}
	if regionID != "" {
		park.RegionID = &regionID
	}
	require.NoError(t, gdb.Create(&park).Error)
}

func seedVisit(t *testing.T, gdb *gorm.DB, code string, year, month int, total *int64) {
	t.Helper()
	require.NoError(t, gdb.Create(&MonthlyVisit{
		ParkCode:    code,
		Year:        year,
		Month:       month,
		TotalVisits: total,
	}).Error)
}

// seedYear gives a park the same total for every month of a year.
func seedYear(t *testing.T, gdb *gorm.DB, code string, year int, monthly int64) {
	t.Helper()
	for m := 1; m <= 12; m++ {
		seedVisit(t, gdb, code, year, m, i64(monthly))
	}
}

func TestYearBounds(t *testing.T) {
	e, gdb := newTestEngine(t)

	_, err := e.YearBounds()
	assert.ErrorIs(t, err, ErrNoData)

	seedRegion(t, gdb, "NE", "Northeast")
	seedPark(t, gdb, "ACAD", "Acadia", "NE")
	seedVisit(t, gdb, "ACAD", 2019, 6, i64(100))
	seedVisit(t, gdb, "ACAD", 2023, 1, i64(100))

	bounds, err := e.YearBounds()
	require.NoError(t, err)
	assert.Equal(t, YearBounds{MinYear: 2019, MaxYear: 2023}, bounds)
}

func TestParkDetails_UnknownParkIsNotFound(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedPark(t, gdb, "ACAD", "Acadia", "NE")

	detail, err := e.ParkDetails("ACAD")
	require.NoError(t, err)
	assert.Equal(t, "Acadia", detail.ParkName)
	require.NotNil(t, detail.RegionName)
	assert.Equal(t, "Northeast", *detail.RegionName)

	_, err = e.ParkDetails("NOPE")
	assert.ErrorIs(t, err, ErrParkNotFound)
}

func TestMonthlySeries(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "ACAD", "Acadia", "")
	seedVisit(t, gdb, "ACAD", 2022, 1, i64(400))
	seedVisit(t, gdb, "ACAD", 2022, 2, i64(600))
	seedVisit(t, gdb, "ACAD", 2022, 3, nil) // observed row, missing measure

	rows, err := e.MonthlySeries(MonthlySeriesParams{ParkCode: "ACAD", Year: 2022, Threshold: 500})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, MonthlySeriesRow{Month: 1, TotalVisits: 400, AboveThreshold: false}, rows[0])
	assert.Equal(t, MonthlySeriesRow{Month: 2, TotalVisits: 600, AboveThreshold: true}, rows[1])

	// A known park with no rows for the year is an empty result, not an error.
	empty, err := e.MonthlySeries(MonthlySeriesParams{ParkCode: "ACAD", Year: 1999})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = e.MonthlySeries(MonthlySeriesParams{ParkCode: "NOPE", Year: 2022})
	assert.ErrorIs(t, err, ErrParkNotFound)
}

// Two parks in one region: ordering is by annual sum descending.
func TestAnnualByPark_RankedDescending(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedPark(t, gdb, "AAAA", "Park A", "NE")
	seedPark(t, gdb, "BBBB", "Park B", "NE")
	seedVisit(t, gdb, "AAAA", 2022, 7, i64(1000))
	seedVisit(t, gdb, "BBBB", 2022, 7, i64(3000))

	rows, err := e.AnnualByPark(AnnualByParkParams{Year: 2022, Filter: Filter{Regions: []string{"NE"}}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BBBB", rows[0].ParkCode)
	assert.Equal(t, int64(3000), rows[0].AnnualTotalVisits)
	assert.Equal(t, "AAAA", rows[1].ParkCode)
	assert.Equal(t, int64(1000), rows[1].AnnualTotalVisits)
}

// With no region restriction, every park with an observed total for the year
// is present; parks with only-NULL measures are not.
func TestAnnualByPark_AllRegionsCoversEveryObservedPark(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedRegion(t, gdb, "PW", "Pacific West")
	seedPark(t, gdb, "AAAA", "Park A", "NE")
	seedPark(t, gdb, "BBBB", "Park B", "PW")
	seedPark(t, gdb, "CCCC", "Park C", "")
	seedPark(t, gdb, "DDDD", "Park D", "PW")
	seedVisit(t, gdb, "AAAA", 2022, 1, i64(10))
	seedVisit(t, gdb, "BBBB", 2022, 1, i64(20))
	seedVisit(t, gdb, "CCCC", 2022, 1, i64(30))
	seedVisit(t, gdb, "DDDD", 2022, 1, nil)

	rows, err := e.AnnualByPark(AnnualByParkParams{Year: 2022})
	require.NoError(t, err)

	var codes []string
	for _, r := range rows {
		codes = append(codes, r.ParkCode)
	}
	assert.ElementsMatch(t, []string{"AAAA", "BBBB", "CCCC"}, codes)
}

func TestAnnualByPark_TieBrokenByParkCode(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "ZION", "Zion", "")
	seedPark(t, gdb, "ACAD", "Acadia", "")
	seedVisit(t, gdb, "ZION", 2022, 1, i64(500))
	seedVisit(t, gdb, "ACAD", 2022, 1, i64(500))

	rows, err := e.AnnualByPark(AnnualByParkParams{Year: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ACAD", rows[0].ParkCode)
	assert.Equal(t, "ZION", rows[1].ParkCode)
}

func TestAnnualByPark_UnknownRegionIsNotFound(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")

	_, err := e.AnnualByPark(AnnualByParkParams{Year: 2022, Filter: Filter{Regions: []string{"NE", "XX"}}})
	assert.ErrorIs(t, err, ErrRegionNotFound)
}

func TestAnnualByPark_MinTotalAndLimit(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "AAAA", "Park A", "")
	seedPark(t, gdb, "BBBB", "Park B", "")
	seedPark(t, gdb, "CCCC", "Park C", "")
	seedVisit(t, gdb, "AAAA", 2022, 1, i64(100))
	seedVisit(t, gdb, "BBBB", 2022, 1, i64(200))
	seedVisit(t, gdb, "CCCC", 2022, 1, i64(300))

	rows, err := e.AnnualByPark(AnnualByParkParams{
		Year:     2022,
		Filter:   Filter{Limit: 1},
		MinTotal: i64(150),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CCCC", rows[0].ParkCode)
}

// Months with NULL totals stay out of both the numerator and denominator.
func TestAvgMonthly_ExcludesMissingMonths(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "ACAD", "Acadia", "")
	seedVisit(t, gdb, "ACAD", 2021, 1, i64(100))
	seedVisit(t, gdb, "ACAD", 2021, 2, i64(300))
	seedVisit(t, gdb, "ACAD", 2021, 3, nil)

	rows, err := e.AvgMonthly(AvgMonthlyParams{StartYear: 2021, EndYear: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 200.0, rows[0].AvgMonthlyVisits, 1e-9)
	assert.Equal(t, 2, rows[0].MonthsWithData)
}

func TestAvgMonthly_RejectsInvertedRange(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.AvgMonthly(AvgMonthlyParams{StartYear: 2023, EndYear: 2021})
	var ip *InvalidParamError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, "start_year", ip.Field)
}

// Peak season is the June-August sum with a strict greater-than filter.
func TestPeakSeason_StrictThreshold(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "AAAA", "Park A", "")
	seedPark(t, gdb, "BBBB", "Park B", "")
	for m := 5; m <= 9; m++ {
		seedVisit(t, gdb, "AAAA", 2022, m, i64(100)) // Jun-Aug sum: 300
		seedVisit(t, gdb, "BBBB", 2022, m, i64(200)) // Jun-Aug sum: 600
	}

	rows, err := e.PeakSeason(PeakSeasonParams{Year: 2022, Threshold: 300})
	require.NoError(t, err)
	require.Len(t, rows, 1) // AAAA's 300 is not strictly above 300
	assert.Equal(t, "BBBB", rows[0].ParkCode)
	assert.Equal(t, int64(600), rows[0].PeakSeasonVisits)
}

// pct_above must agree with a hand-computed mean to float tolerance.
func TestAboveAverage_PctAgainstManualMean(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "AAAA", "Park A", "")
	seedPark(t, gdb, "BBBB", "Park B", "")
	seedPark(t, gdb, "CCCC", "Park C", "")
	seedVisit(t, gdb, "AAAA", 2022, 1, i64(100))
	seedVisit(t, gdb, "BBBB", 2022, 1, i64(200))
	seedVisit(t, gdb, "CCCC", 2022, 1, i64(600))

	rows, err := e.AboveAverage(AboveAverageParams{Year: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	mean := (100.0 + 200.0 + 600.0) / 3.0
	assert.Equal(t, "CCCC", rows[0].ParkCode)
	assert.InDelta(t, mean, rows[0].ComparisonMean, 1e-6)
	assert.InDelta(t, (600.0-mean)/mean*100.0, rows[0].PctAboveMean, 1e-6)
}

// Selecting regions changes the comparison set to those regions only.
func TestAboveAverage_RegionScopedMean(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedRegion(t, gdb, "PW", "Pacific West")
	seedPark(t, gdb, "AAAA", "Park A", "NE")
	seedPark(t, gdb, "BBBB", "Park B", "NE")
	seedPark(t, gdb, "HUGE", "Park Huge", "PW")
	seedVisit(t, gdb, "AAAA", 2022, 1, i64(100))
	seedVisit(t, gdb, "BBBB", 2022, 1, i64(300))
	seedVisit(t, gdb, "HUGE", 2022, 1, i64(100000))

	rows, err := e.AboveAverage(AboveAverageParams{Year: 2022, Filter: Filter{Regions: []string{"NE"}}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BBBB", rows[0].ParkCode)
	assert.InDelta(t, 200.0, rows[0].ComparisonMean, 1e-6)
}

func TestAboveAverage_NoDataIsEmptyNotError(t *testing.T) {
	e, _ := newTestEngine(t)
	rows, err := e.AboveAverage(AboveAverageParams{Year: 2022})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Q2 and Q6 agree on ordering and values for a single region.
func TestTopParks_MatchesAnnualByParkForOneRegion(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedPark(t, gdb, "AAAA", "Park A", "NE")
	seedPark(t, gdb, "BBBB", "Park B", "NE")
	seedPark(t, gdb, "CCCC", "Park C", "NE")
	seedVisit(t, gdb, "AAAA", 2022, 1, i64(50))
	seedVisit(t, gdb, "BBBB", 2022, 1, i64(500))
	seedVisit(t, gdb, "CCCC", 2022, 1, i64(5))

	annual, err := e.AnnualByPark(AnnualByParkParams{Year: 2022, Filter: Filter{Regions: []string{"NE"}}})
	require.NoError(t, err)
	top, err := e.TopParks(TopParksParams{Year: 2022, Limit: 10, Regions: []string{"NE"}})
	require.NoError(t, err)

	require.Equal(t, len(annual), len(top))
	for i := range annual {
		assert.Equal(t, annual[i].ParkCode, top[i].ParkCode)
		assert.Equal(t, annual[i].AnnualTotalVisits, top[i].AnnualTotalVisits)
		assert.Equal(t, i+1, top[i].Rank)
	}
}

// Rank is relative to the scope even when a name filter narrows the output.
func TestTopParks_RankSurvivesNameFilter(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "AAAA", "Alpha Park", "")
	seedPark(t, gdb, "BBBB", "Beta Park", "")
	seedVisit(t, gdb, "AAAA", 2022, 1, i64(1000))
	seedVisit(t, gdb, "BBBB", 2022, 1, i64(500))

	rows, err := e.TopParks(TopParksParams{Year: 2022, Limit: 10, NameQuery: "beta"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BBBB", rows[0].ParkCode)
	assert.Equal(t, 2, rows[0].Rank)
}

// Multi-region output is one flat ranking, never grouped by region: the
// metric must be non-increasing end to end.
func TestTopParks_FlatRankingAcrossRegions(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedRegion(t, gdb, "PW", "Pacific West")
	seedPark(t, gdb, "AAAA", "Park A", "NE")
	seedPark(t, gdb, "BBBB", "Park B", "PW")
	seedPark(t, gdb, "CCCC", "Park C", "NE")
	seedPark(t, gdb, "DDDD", "Park D", "PW")
	seedVisit(t, gdb, "AAAA", 2022, 1, i64(400))
	seedVisit(t, gdb, "BBBB", 2022, 1, i64(300))
	seedVisit(t, gdb, "CCCC", 2022, 1, i64(200))
	seedVisit(t, gdb, "DDDD", 2022, 1, i64(100))

	rows, err := e.TopParks(TopParksParams{Year: 2022, Limit: 10, Regions: []string{"NE", "PW"}})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i].AnnualTotalVisits, rows[i-1].AnnualTotalVisits,
			"ranking must be non-increasing across the whole result")
	}
	// Regions interleave in rank order rather than clustering.
	assert.Equal(t, []string{"AAAA", "BBBB", "CCCC", "DDDD"},
		[]string{rows[0].ParkCode, rows[1].ParkCode, rows[2].ParkCode, rows[3].ParkCode})
}

// Every region appears in Q7, including regions with no data at all.
func TestAnnualByRegion_IncludesEmptyRegions(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedRegion(t, gdb, "AK", "Alaska")
	seedPark(t, gdb, "ACAD", "Acadia", "NE")
	seedVisit(t, gdb, "ACAD", 2022, 1, i64(250))
	seedVisit(t, gdb, "ACAD", 2021, 1, i64(9999)) // other year, must not leak in

	rows, err := e.AnnualByRegion(AnnualByRegionParams{Year: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "NE", rows[0].RegionID)
	assert.Equal(t, int64(250), rows[0].AnnualTotalVisits)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "AK", rows[1].RegionID)
	assert.Equal(t, int64(0), rows[1].AnnualTotalVisits)
	assert.Equal(t, 2, rows[1].Rank)
}

// January never appears in Q8 output, and the concrete Jan=100/Feb=150
// scenario yields delta 50, pct 50.0.
func TestMonthChange_JanuaryExcluded(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "ACAD", "Acadia", "")
	seedVisit(t, gdb, "ACAD", 2022, 1, i64(100))
	seedVisit(t, gdb, "ACAD", 2022, 2, i64(150))

	rows, err := e.MonthChange(MonthChangeParams{ParkCode: "ACAD", Year: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Month)
	assert.Equal(t, int64(50), rows[0].Delta)
	assert.InDelta(t, 50.0, rows[0].PctChange, 1e-9)
}

// A month whose predecessor is zero or missing is dropped, not reported with
// an undefined percentage.
func TestMonthChange_UndefinedRowsDropped(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "ACAD", "Acadia", "")
	seedVisit(t, gdb, "ACAD", 2022, 3, i64(0))
	seedVisit(t, gdb, "ACAD", 2022, 4, i64(80)) // prior month is zero
	seedVisit(t, gdb, "ACAD", 2022, 6, i64(90)) // month 5 missing entirely
	seedVisit(t, gdb, "ACAD", 2022, 7, i64(45))

	rows, err := e.MonthChange(MonthChangeParams{ParkCode: "ACAD", Year: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 7, rows[0].Month)
	assert.Equal(t, int64(-45), rows[0].Delta)
	assert.InDelta(t, -50.0, rows[0].PctChange, 1e-9)
}

func TestGrowth_RankedAndComputed(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedRegion(t, gdb, "NE", "Northeast")
	seedPark(t, gdb, "AAAA", "Park A", "NE")
	seedPark(t, gdb, "BBBB", "Park B", "NE")
	seedVisit(t, gdb, "AAAA", 2020, 1, i64(100))
	seedVisit(t, gdb, "AAAA", 2023, 1, i64(300)) // +200%
	seedVisit(t, gdb, "BBBB", 2020, 1, i64(100))
	seedVisit(t, gdb, "BBBB", 2023, 1, i64(150)) // +50%

	rows, err := e.Growth(GrowthParams{StartYear: 2020, EndYear: 2023, Regions: []string{"NE"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AAAA", rows[0].ParkCode)
	assert.InDelta(t, 200.0, rows[0].GrowthPct, 1e-9)
	assert.Equal(t, "BBBB", rows[1].ParkCode)
	assert.InDelta(t, 50.0, rows[1].GrowthPct, 1e-9)
}

// A park whose baseline-year sum is zero or missing has undefined growth and
// must be absent from the output.
func TestGrowth_ZeroOrMissingBaselineExcluded(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "YYYY", "Park Y", "")
	seedPark(t, gdb, "ZZZZ", "Park Z", "")
	// YYYY: every 2020 month observed but NULL, 2021 has data.
	for m := 1; m <= 12; m++ {
		seedVisit(t, gdb, "YYYY", 2020, m, nil)
	}
	seedVisit(t, gdb, "YYYY", 2021, 1, i64(500))
	// ZZZZ: explicit zero baseline.
	seedVisit(t, gdb, "ZZZZ", 2020, 1, i64(0))
	seedVisit(t, gdb, "ZZZZ", 2021, 1, i64(500))

	rows, err := e.Growth(GrowthParams{StartYear: 2020, EndYear: 2021})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGrowth_RejectsNonWindow(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Growth(GrowthParams{StartYear: 2022, EndYear: 2022})
	var ip *InvalidParamError
	assert.ErrorAs(t, err, &ip)
}

// A constant monthly series has exactly zero sample standard deviation.
func TestVariability_ConstantSeriesIsZero(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "FLAT", "Flatline", "")
	seedYear(t, gdb, "FLAT", 2022, 1234)

	rows, err := e.Variability(VariabilityParams{StartYear: 2022, EndYear: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].MonthsWithData)
	assert.Equal(t, 0.0, rows[0].StdDevMonthlyVisits)
}

// Sample (n-1) standard deviation over the observed months only.
func TestVariability_SampleStdDev(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "ACAD", "Acadia", "")
	seedVisit(t, gdb, "ACAD", 2022, 1, i64(10))
	seedVisit(t, gdb, "ACAD", 2022, 2, i64(20))
	seedVisit(t, gdb, "ACAD", 2022, 3, i64(30))
	seedVisit(t, gdb, "ACAD", 2022, 4, nil) // excluded from the sample

	rows, err := e.Variability(VariabilityParams{StartYear: 2022, EndYear: 2022})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].MonthsWithData)
	assert.InDelta(t, 20.0, rows[0].AvgMonthlyVisits, 1e-9)
	assert.InDelta(t, 10.0, rows[0].StdDevMonthlyVisits, 1e-9) // sqrt(((10-20)^2+(0)^2+(10)^2)/2)
}

// Fewer than two observed months means no defined deviation.
func TestVariability_SingleMonthDropped(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "ONCE", "One Month Wonder", "")
	seedVisit(t, gdb, "ONCE", 2022, 6, i64(500))

	rows, err := e.Variability(VariabilityParams{StartYear: 2022, EndYear: 2022})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestVariability_RankedMostVolatileFirst(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "CALM", "Calm Park", "")
	seedPark(t, gdb, "WILD", "Wild Park", "")
	seedYear(t, gdb, "CALM", 2022, 100)
	for m := 1; m <= 12; m++ {
		v := int64(100)
		if m%2 == 0 {
			v = 10000
		}
		seedVisit(t, gdb, "WILD", 2022, m, i64(v))
	}

	rows, err := e.Variability(VariabilityParams{StartYear: 2022, EndYear: 2022, Filter: Filter{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WILD", rows[0].ParkCode)
}

func TestMetricTotals(t *testing.T) {
	e, gdb := newTestEngine(t)
	seedPark(t, gdb, "AAAA", "Park A", "")
	seedPark(t, gdb, "BBBB", "Park B", "")
	require.NoError(t, gdb.Create(&MonthlyVisit{
		ParkCode: "AAAA", Year: 2022, Month: 6, TentCampers: i64(40),
	}).Error)
	require.NoError(t, gdb.Create(&MonthlyVisit{
		ParkCode: "BBBB", Year: 2022, Month: 6, TentCampers: i64(90),
	}).Error)

	rows, err := e.MetricTotals(MetricTotalsParams{Year: 2022, Metric: MetricTentCampers})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BBBB", rows[0].ParkCode)
	assert.Equal(t, int64(90), rows[0].MetricTotal)

	_, err = e.MetricTotals(MetricTotalsParams{Year: 2022, Metric: Metric("visits; DROP TABLE park")})
	var ip *InvalidParamError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, "metric", ip.Field)
}

package visits

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// writeJSON encodes v as the success response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses:
// invalid parameter -> 400, not found -> 404, anything else is a store
// failure -> 503. Empty result sets never reach here; they encode as [].
func writeEngineError(w http.ResponseWriter, err error) {
	var ip *InvalidParamError
	switch {
	case errors.As(err, &ip):
		http.Error(w, ip.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrParkNotFound), errors.Is(err, ErrRegionNotFound), errors.Is(err, ErrNoData):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "Data store unavailable", http.StatusServiceUnavailable)
	}
}

// writeValidationError reports the first offending field of a validator
// failure as an invalid-parameter response.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := toSnake(verrs[0].Field())
		http.Error(w, "invalid parameter "+field+": failed "+verrs[0].Tag()+" check", http.StatusBadRequest)
		return
	}
	http.Error(w, "invalid parameters", http.StatusBadRequest)
}

func toSnake(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// intParam parses an integer query parameter, falling back to def when the
// parameter is absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name, "must be an integer")
	}
	return v, nil
}

func int64Param(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidParam(name, "must be an integer")
	}
	return v, nil
}

// regionsParam parses the regions filter: empty or "all" means no
// restriction; otherwise a comma-separated list of region IDs,
// case-insensitive and de-duplicated.
func regionsParam(r *http.Request) []string {
	raw := strings.TrimSpace(r.URL.Query().Get("regions"))
	// Single-region form kept for compatibility with older clients.
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("region_id"))
	}
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.ToUpper(strings.TrimSpace(part))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// parksParam parses the optional park-code restriction, accepting either a
// comma-separated parks list or the single park_code form.
func parksParam(r *http.Request) []string {
	raw := strings.TrimSpace(r.URL.Query().Get("parks"))
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("park_code"))
	}
	if raw == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// YearBoundsHandler returns the min/max year in monthly_visit so the frontend
// can build year selectors that match the loaded data.
func YearBoundsHandler(w http.ResponseWriter, r *http.Request) {
	bounds, err := engine.YearBounds()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, bounds)
}

// RegionsHandler lists all regions (dropdown helper).
func RegionsHandler(w http.ResponseWriter, r *http.Request) {
	regions, err := engine.ListRegions()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, regions)
}

// ParkDetailsHandler returns the full park record including the boundary
// GeoJSON used for the map view.
func ParkDetailsHandler(w http.ResponseWriter, r *http.Request) {
	parkCode := strings.ToUpper(chi.URLParam(r, "park_code"))
	detail, err := engine.ParkDetails(parkCode)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, detail)
}

// MonthlySeriesHandler serves Q1: monthly total visits for a park and year,
// each month flagged against a demand threshold.
func MonthlySeriesHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	threshold, err := int64Param(r, "threshold", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year      int   `validate:"required,min=1"`
		Threshold int64 `validate:"min=0"`
	}{year, threshold}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.MonthlySeries(MonthlySeriesParams{
		ParkCode:  strings.ToUpper(chi.URLParam(r, "park_code")),
		Year:      year,
		Threshold: threshold,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// AnnualByParkHandler serves Q2: annual total visits per park for one year.
func AnnualByParkHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	limit, err := intParam(r, "limit", 100)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	var minTotal *int64
	if r.URL.Query().Get("min_total") != "" {
		v, err := int64Param(r, "min_total", 0)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		minTotal = &v
	}

	q := struct {
		Year  int `validate:"required,min=1"`
		Limit int `validate:"min=1"`
	}{year, limit}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.AnnualByPark(AnnualByParkParams{
		Year: year,
		Filter: Filter{
			Regions:   regionsParam(r),
			Parks:     parksParam(r),
			NameQuery: r.URL.Query().Get("query"),
			Limit:     limit,
		},
		MinTotal: minTotal,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// AvgMonthlyHandler serves Q3: average monthly visits per park over a year
// range.
func AvgMonthlyHandler(w http.ResponseWriter, r *http.Request) {
	startYear, err := intParam(r, "start_year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	endYear, err := intParam(r, "end_year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	limit, err := intParam(r, "limit", 100)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		StartYear int `validate:"required,min=1"`
		EndYear   int `validate:"required,min=1"`
		Limit     int `validate:"min=1"`
	}{startYear, endYear, limit}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.AvgMonthly(AvgMonthlyParams{
		StartYear: startYear,
		EndYear:   endYear,
		Filter: Filter{
			Regions:   regionsParam(r),
			Parks:     parksParam(r),
			NameQuery: r.URL.Query().Get("query"),
			Limit:     limit,
		},
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// PeakSeasonHandler serves Q4: parks whose June-August total is strictly
// above the threshold.
func PeakSeasonHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if r.URL.Query().Get("threshold") == "" {
		http.Error(w, "invalid parameter threshold: required", http.StatusBadRequest)
		return
	}
	threshold, err := int64Param(r, "threshold", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year      int   `validate:"required,min=1"`
		Threshold int64 `validate:"min=0"`
	}{year, threshold}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.PeakSeason(PeakSeasonParams{
		Year:      year,
		Threshold: threshold,
		Regions:   regionsParam(r),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// AboveAverageHandler serves Q5: parks above the system-wide (or selected
// regions') average annual visits.
func AboveAverageHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year int `validate:"required,min=1"`
	}{year}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.AboveAverage(AboveAverageParams{
		Year: year,
		Filter: Filter{
			Regions:   regionsParam(r),
			Parks:     parksParam(r),
			NameQuery: r.URL.Query().Get("query"),
		},
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// TopParksHandler serves Q6: top N parks by annual visits in a single flat
// ranking over the selected scope.
func TopParksHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year  int `validate:"required,min=1"`
		Limit int `validate:"min=1"`
	}{year, limit}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.TopParks(TopParksParams{
		Year:      year,
		Limit:     limit,
		Regions:   regionsParam(r),
		NameQuery: r.URL.Query().Get("query"),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// AnnualByRegionHandler serves Q7: annual total visits per region, ranked.
func AnnualByRegionHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year int `validate:"required,min=1"`
	}{year}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.AnnualByRegion(AnnualByRegionParams{
		Year:    year,
		Regions: regionsParam(r),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// MonthChangeHandler serves Q8: month-to-month change for a park and year.
func MonthChangeHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year int `validate:"required,min=1"`
	}{year}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.MonthChange(MonthChangeParams{
		ParkCode: strings.ToUpper(chi.URLParam(r, "park_code")),
		Year:     year,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// RegionGrowthHandler serves Q9: parks with the highest percentage growth in
// annual visits within a region over a time window.
func RegionGrowthHandler(w http.ResponseWriter, r *http.Request) {
	startYear, err := intParam(r, "start_year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	endYear, err := intParam(r, "end_year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		StartYear int `validate:"required,min=1"`
		EndYear   int `validate:"required,min=1"`
	}{startYear, endYear}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	regionID := strings.ToUpper(chi.URLParam(r, "region_id"))
	rows, err := engine.Growth(GrowthParams{
		StartYear: startYear,
		EndYear:   endYear,
		Regions:   []string{regionID},
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// VariabilityHandler serves Q10: parks ranked by sample standard deviation of
// monthly visits.
func VariabilityHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	endYear, err := intParam(r, "end_year", year)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year  int `validate:"required,min=1"`
		Limit int `validate:"min=1"`
	}{year, limit}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	rows, err := engine.Variability(VariabilityParams{
		StartYear: year,
		EndYear:   endYear,
		Filter: Filter{
			Regions:   regionsParam(r),
			Parks:     parksParam(r),
			NameQuery: r.URL.Query().Get("query"),
			Limit:     limit,
		},
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

// MetricTotalsHandler serves the metrics explorer: the annual sum of any
// single measure column per park.
func MetricTotalsHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	limit, err := intParam(r, "limit", 50)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	q := struct {
		Year  int `validate:"required,min=1"`
		Limit int `validate:"min=1"`
	}{year, limit}
	if err := validate.Struct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	metric, err := ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	rows, err := engine.MetricTotals(MetricTotalsParams{
		Year:    year,
		Metric:  metric,
		Regions: regionsParam(r),
		Limit:   limit,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rows)
}

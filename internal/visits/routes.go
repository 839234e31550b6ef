package visits

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the query service. Paths mirror the analytics API the
// frontend was built against.
func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/metadata/years", YearBoundsHandler)
	r.Get("/regions/", RegionsHandler)
	r.Get("/regions/{region_id}/growth", RegionGrowthHandler)

	r.Get("/parks/{park_code}/details", ParkDetailsHandler)
	r.Get("/parks/{park_code}/monthly-visits", MonthlySeriesHandler)
	r.Get("/parks/{park_code}/month-to-month-change", MonthChangeHandler)

	r.Get("/annual-visits/parks", AnnualByParkHandler)
	r.Get("/annual-visits/parks/metrics", MetricTotalsHandler)
	r.Get("/annual-visits/regions", AnnualByRegionHandler)
	r.Get("/annual-visits/top", TopParksHandler)

	r.Get("/visits/parks/average-monthly", AvgMonthlyHandler)
	r.Get("/visits/parks/above-system-average", AboveAverageHandler)
	r.Get("/visits/parks/variability", VariabilityHandler)
	r.Get("/visits/peak-season/above-threshold", PeakSeasonHandler)

	return r
}

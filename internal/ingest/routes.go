package ingest

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/edozal3/ED305Project/internal/db"
)

// SetupRoutes exposes the admin-only ingestion endpoints. main.go wraps them
// in the admin-key middleware.
func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/reload-regions", ReloadRegionsHandler)
	return r
}

// ReloadRegionsHandler re-seeds the region table from the region config file
// without a service restart.
func ReloadRegionsHandler(w http.ResponseWriter, r *http.Request) {
	path := os.Getenv("REGION_CONFIG")
	if path == "" {
		path = "config/regions.yaml"
	}

	cfg, err := LoadRegionConfig(path)
	if err != nil {
		http.Error(w, "Invalid region config: "+err.Error(), http.StatusInternalServerError)
		return
	}

	n, err := SeedRegions(db.DB, cfg)
	if err != nil {
		http.Error(w, "Failed to seed regions", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"regions_seeded": n})
}

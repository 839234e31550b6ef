package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/edozal3/ED305Project/internal/db"
	"github.com/edozal3/ED305Project/internal/ingest"
	"github.com/edozal3/ED305Project/internal/middleware"
	"github.com/edozal3/ED305Project/internal/visits"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "NPS visitor analytics API is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	visits.Init()
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/", visits.SetupRoutes())

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminKeyMiddleware)
		r.Mount("/admin", ingest.SetupRoutes())
	})

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}

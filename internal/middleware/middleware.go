package middleware

import (
	"net/http"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// defaultOrigins are the local dev frontends. Production origins come in via
// ALLOWED_ORIGINS (comma-separated).
var defaultOrigins = []string{
	"http://localhost:8501",
	"http://localhost:5173",
}

func allowedOrigins() map[string]struct{} {
	allowed := make(map[string]struct{})
	for _, o := range defaultOrigins {
		allowed[o] = struct{}{}
	}
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return allowed
}

func CORSMiddleware(next http.Handler) http.Handler {
	allowed := allowedOrigins()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it's on our allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin") // important for caches
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, X-Admin-Key")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminKeyMiddleware guards the ingestion endpoints. The caller presents the
// plaintext key in X-Admin-Key; ADMIN_KEY_HASH holds its bcrypt hash so the
// key itself never lives in config.
func AdminKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := os.Getenv("ADMIN_KEY_HASH")
		if hash == "" {
			http.Error(w, "Admin endpoints disabled", http.StatusForbidden)
			return
		}

		key := r.Header.Get("X-Admin-Key")
		if key == "" {
			http.Error(w, "Missing X-Admin-Key header", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			http.Error(w, "Invalid admin key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

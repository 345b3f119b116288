package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the listed browser origins to call the API with credentials.
// With no origins configured it only serves same-origin clients.
func CORS(origins []string, debug bool) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", csrfHeader},
		ExposedHeaders:   []string{csrfHeader},
		AllowCredentials: true,
		MaxAge:           600,
		Debug:            debug,
	})
	return c.Handler
}

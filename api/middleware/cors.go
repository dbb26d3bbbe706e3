package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/auth/session"
)

// CORS returns middleware that applies the configured allowed origin policy.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", session.HeaderName, "Idempotency-Key", "X-Requested-With", responses.RequestIDHeader},
		ExposedHeaders:   []string{session.HeaderName, responses.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

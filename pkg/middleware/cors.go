package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Cors allows browser clients on allowOrigins to send the bearer token and
// organizationHeader across origins.
func Cors(organizationHeader string, allowOrigins ...string) mux.MiddlewareFunc {
	if organizationHeader == "" {
		organizationHeader = DefaultOrganizationHeader
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", organizationHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-Id", "X-Trace-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})
	return c.Handler
}

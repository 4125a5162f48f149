package middleware

import (
	"net/http"
	"strings"

	"kvr/userdb/internal/config"
	"kvr/userdb/internal/utils"

	"go.uber.org/zap"
)

// APIKey guards the public API with the shared-secret header. A server with
// no key configured fails closed: every request gets a 500 rather than
// letting traffic through unauthenticated.
func APIKey(cfg *config.Config, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(cfg.APIKey)
			if key == "" {
				logger.Error("API_KEY is not configured, rejecting request",
					zap.String("path", r.URL.Path))
				utils.JSONError(w, http.StatusInternalServerError, "API_KEY is not configured on the server.")
				return
			}
			provided := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if provided != key {
				utils.JSONError(w, http.StatusUnauthorized, "Invalid or missing API key.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

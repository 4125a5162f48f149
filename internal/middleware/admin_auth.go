package middleware

import (
	"errors"
	"net/http"

	"kvr/userdb/internal/repositories"
	"kvr/userdb/internal/utils"

	"go.uber.org/zap"
)

// CredentialChecker verifies an admin password against stored state.
type CredentialChecker interface {
	CheckPassword(password string) error
}

// AdminAuth guards the admin CRUD routes with HTTP basic auth. The basic
// auth username is ignored; only the password is checked, against the
// bcrypt hash in the admin table. This is a separate trust boundary from
// the public API key and the two are never unified.
func AdminAuth(repo CredentialChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			if err := repo.CheckPassword(password); err != nil {
				if !errors.Is(err, repositories.ErrNoCredential) && !errors.Is(err, repositories.ErrWrongPassword) {
					logger.Error("admin credential check failed", zap.Error(err))
					utils.JSONError(w, http.StatusInternalServerError, "Failed to verify admin password.")
					return
				}
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
	utils.JSONError(w, http.StatusUnauthorized, "Invalid or missing admin password.")
}

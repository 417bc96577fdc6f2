package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// AdminAuth guards admin routes with a bearer token. When no token is
// configured the admin surface is disabled entirely.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				slog.Warn("admin request rejected: no admin token configured", "path", r.URL.Path)
				denyAdmin(w, "admin API is disabled")
				return
			}

			presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				slog.Warn("admin request rejected: bad token",
					"path", r.URL.Path,
					"remoteAddr", r.RemoteAddr,
				)
				denyAdmin(w, "invalid admin token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyAdmin(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.APIError{
		Error: models.APIErrorDetail{
			Code:    config.ErrorUnauthorized,
			Message: message,
		},
	})
}

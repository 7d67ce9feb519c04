package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gouache/gouache-api/internal/pkg/response"
)

// CronAuth guards scheduler-triggered endpoints with a shared secret.
// The trigger may present the secret either as a bearer token or via the
// X-Cron-Key header. Requests with neither are rejected.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				response.Unauthorized(w, "Cron secret not configured")
				return
			}

			presented := r.Header.Get("X-Cron-Key")
			if presented == "" {
				authHeader := r.Header.Get("Authorization")
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
					presented = parts[1]
				}
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				response.Unauthorized(w, "Invalid cron credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Package apikey authenticates detector clients by shared API key.
package apikey

import (
	"fmt"
	"log/slog"
	"net/http"

	"odyssey/internal/platform/secrets"
)

const headerName = "X-API-Key"

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireKey checks the X-API-Key header against the configured bcrypt hash.
// An empty hash disables the check, for local development.
func RequireKey(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerName)
			if key == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing API key")
				return
			}
			if err := secrets.Verify(key, keyHash); err != nil {
				logger.WarnContext(r.Context(), "detector API key rejected",
					"remote_addr", r.RemoteAddr)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

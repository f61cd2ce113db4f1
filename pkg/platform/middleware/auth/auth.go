// Package auth provides JWT bearer-token middleware for operator endpoints.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"odyssey/internal/jwttoken"
	"odyssey/pkg/requestcontext"
)

// TokenValidator validates operator tokens. *jwttoken.Service satisfies this.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth validates the Authorization bearer token and stores the acting
// principal on the request context. Requests without a valid token are
// rejected before reaching the handler.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed", "error", err)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			if claims.Actor == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "token names no actor")
				return
			}

			ctx := requestcontext.WithActor(r.Context(), claims.Actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

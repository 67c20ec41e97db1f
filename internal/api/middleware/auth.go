package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wildfiresync/gendersync/internal/api/apierr"
)

type contextKey string

const tokenContextKey contextKey = "token"

// RequireBearer rejects requests that carry no bearer credential. The token
// is not validated here; the sync coordinator authenticates it against the
// claimed player so the auth check and the player binding stay in one place.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}

		ctx := context.WithValue(r.Context(), tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken extracts the credential from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Older mod builds send the token in a bare header
	return r.Header.Get("Auth-Token")
}

// GetToken returns the bearer token from the request context
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/readcircle/book-recommendation-service/internal/observability"
)

// Middleware returns an HTTP middleware that requires a valid Bearer
// token. The authenticated user's ID and username are placed on the
// request context; handlers read them via observability.UserIDFromContext.
func Middleware(manager *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			userID, err := UserIDFromClaims(claims)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}

			ctx := observability.WithUserID(r.Context(), userID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

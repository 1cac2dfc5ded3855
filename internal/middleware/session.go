// Package middleware provides HTTP middlewares for session authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// SessionLookup resolves a session token to the logged-in username.
type SessionLookup interface {
	UserForSession(token string) (string, bool)
}

// SessionAuth rejects requests without a valid session cookie.
//
// Rejections use the service's JSON error shape with status 401 so clients
// can tell them apart from transport failures. On success the username is
// stored in the request context.
func SessionAuth(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil {
				writeUnauthorized(w)
				return
			}
			user, ok := sessions.UserForSession(c.Value)
			if !ok {
				writeUnauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
}

// GetUserFromContext extracts the username stored by SessionAuth.
// Returns an empty string if not found.
func GetUserFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

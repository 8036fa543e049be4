package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can read or write the
// session value in a request context.
type contextKey string

const sessionKey contextKey = "session"

// RequireAuth enforces authentication on protected routes. It accepts the
// session token from an Authorization: Bearer header or, failing that, the
// "token" cookie, validates it, and stores the claims in the request
// context. Missing or invalid tokens end the request with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext retrieves the authenticated session claims. The second
// return is false for anonymous requests.
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(sessionKey).(*SessionClaims)
	return claims, ok && claims != nil
}

// UserIDFromContext is a shortcut for the common case of only needing the
// authenticated user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := SessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.UserID(), claims.UserID() != ""
}

func extractClaims(r *http.Request, tokens *TokenService) (*SessionClaims, error) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return tokens.Validate(strings.TrimPrefix(header, "Bearer "))
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return nil, err
	}
	return tokens.Validate(cookie.Value)
}

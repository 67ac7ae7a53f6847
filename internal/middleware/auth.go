package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/pantrypal/internal/auth"
)

// TokenParser validates an access token and returns the caller it names.
type TokenParser interface {
	Parse(token string) (auth.AuthContext, error)
}

// RequireAuth validates the bearer token and populates AuthContext.
// Browsers cannot set headers on a websocket upgrade, so the token may also
// arrive in the access_token query parameter.
func RequireAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w, "Missing access token")
				return
			}

			ac, err := tokens.Parse(raw)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					unauthorized(w, "Access token has expired")
					return
				}
				unauthorized(w, "Invalid access token")
				return
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="pantrypal"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

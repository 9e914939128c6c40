package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// CallerCtxKey carries the authenticated transport binding name.
const CallerCtxKey contextKey = "caller"

// AuthMiddleware validates the bearer token the message transport presents on
// trigger calls. Tokens are HMAC-signed with the shared webhook secret; the
// sub claim names the calling binding.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			caller := ""
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				caller, _ = claims["sub"].(string)
			}

			ctx := context.WithValue(r.Context(), CallerCtxKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Package middleware provides HTTP middleware for the sync service.
package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type principalKey struct{}

// WithPrincipal stores the caller identity in the context.
func WithPrincipal(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, principalKey{}, name)
}

// PrincipalFromContext extracts the caller identity from the context.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(principalKey{}).(string)
	return name, ok
}

// AuthConfig holds the accepted bearer credentials. A static token is
// compared in constant time; alternatively an HS256 JWT signed with
// JWTSecret is accepted, with the sub claim as the principal. Either may be
// empty to disable that method.
type AuthConfig struct {
	APIToken  string
	JWTSecret []byte
}

// Auth returns middleware that authenticates the Authorization bearer
// header. Requests that match neither credential get 401 JSON.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				credential := strings.TrimPrefix(auth, "Bearer ")

				if cfg.APIToken != "" &&
					subtle.ConstantTimeCompare([]byte(credential), []byte(cfg.APIToken)) == 1 {
					ctx := WithPrincipal(r.Context(), "api-token")
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}

				if len(cfg.JWTSecret) > 0 {
					token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
						return cfg.JWTSecret, nil
					}, jwt.WithValidMethods([]string{"HS256"}))

					if err == nil && token.Valid {
						if claims, ok := token.Claims.(jwt.MapClaims); ok {
							if sub, ok := claims["sub"].(string); ok && sub != "" {
								ctx := WithPrincipal(r.Context(), sub)
								next.ServeHTTP(w, r.WithContext(ctx))
								return
							}
						}
					}
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code":    401,
				"message": "unauthorized: provide a valid bearer token",
			})
		})
	}
}

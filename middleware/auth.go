package middleware

import (
	"context"
	"net/http"
	"strings"

	"bootcamp-api/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// Protect verifies the bearer token and attaches its claims to the context. With a
// nil issuer every request is rejected.
func Protect(issuer *utils.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Fields(authHeader)
			if issuer == nil || len(parts) != 2 || parts[0] != "Bearer" {
				utils.WriteError(w, r, utils.Unauthorized())
				return
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				er := utils.Unauthorized()
				er.Err = err
				utils.WriteError(w, r, er)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the claims attached by Protect.
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

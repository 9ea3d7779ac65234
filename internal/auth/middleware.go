package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "userClaims"

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// AuthMiddleware accepts the token either as a Bearer header or as the
// "jwt" cookie set by the login flow.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := ""

		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tokenStr = strings.TrimPrefix(h, "Bearer ")
		} else if c, err := r.Cookie("jwt"); err == nil {
			tokenStr = c.Value
		}

		if tokenStr == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := ValidateJWT(tokenStr)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetUserClaimsFromContext(r.Context())
			if err != nil || claims.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUserClaimsFromContext(ctx context.Context) (*UserClaims, error) {
	claims, ok := ctx.Value(claimsKey).(*UserClaims)
	if !ok || claims == nil {
		return nil, errors.New("no user claims in context")
	}
	return claims, nil
}

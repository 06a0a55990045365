package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"patient-care-api/internal/apperr"
	"patient-care-api/internal/auth"
	"patient-care-api/internal/model"
)

type ctxKey string

const (
	UserIDKey ctxKey = "uid"
	RoleKey   ctxKey = "role"
)

// Auth requires a valid "Authorization: Bearer <jwt>" header.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, "Bearer ") {
				apperr.Write(w, apperr.Unauthorized("Not authorized, no token", nil), false)
				return
			}
			raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
			if raw == "" {
				apperr.Write(w, apperr.Unauthorized("Not authorized, no token", nil), false)
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				apperr.Write(w, apperr.Unauthorized("Not authorized, token failed", err), false)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			l := log.Ctx(ctx).With().Str("user_id", claims.UserID).Logger()
			ctx = l.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Auth.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Role(r.Context()) != role {
				apperr.Write(w, apperr.Forbidden("Not authorized as "+string(role)), false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func Role(ctx context.Context) model.Role {
	role, _ := ctx.Value(RoleKey).(model.Role)
	return role
}

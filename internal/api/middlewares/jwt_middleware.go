package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"docchat/internal/core/session"
)

// JWTAuth validates the Authorization header, requires the referenced
// session to still exist (logout destroys it), and attaches user_id,
// username and session_id to the request context.
func JWTAuth(secret string, sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			sid, ok := claims["session_id"].(string)
			if !ok {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}
			sess, ok := sessions.Get(sid)
			if !ok {
				http.Error(w, "session expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", sess.UserID)
			ctx = context.WithValue(ctx, "username", sess.Username)
			ctx = context.WithValue(ctx, "session_id", sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"annadan/internal/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

// BearerToken — токен сессии из Authorization: Bearer <token>.
func BearerToken(r *http.Request) string {
	const p = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, p) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, p))
}

// RequireAuth пропускает только завершённые сессии; roles сужает доступ
// до перечисленных ролей (пусто — любая роль). Сессия кладётся в
// контекст запроса, дальше её достаёт SessionFrom.
func RequireAuth(reg *SessionRegistry, roles ...string) mux.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := reg.Get(BearerToken(r))
			if sess == nil || sess.State != StateAuthenticated {
				models.WriteProblem(w, http.StatusUnauthorized,
					"session_expired", "Unauthorized",
					"session is missing or expired, log in again", nil)
				return
			}
			if len(allowed) > 0 {
				if _, ok := allowed[sess.Role]; !ok {
					models.WriteProblem(w, http.StatusForbidden,
						"forbidden", "Forbidden",
						"role is not allowed to perform this action", nil)
					return
				}
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom — сессия текущего запроса (после RequireAuth).
func SessionFrom(r *http.Request) *Session {
	if s, ok := r.Context().Value(sessionKey).(*Session); ok {
		return s
	}
	return nil
}

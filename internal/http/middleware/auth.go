package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gestaozabele/visa/internal/auth"
)

type contextKey string

const (
	contextKeySession contextKey = "session"
	contextKeyAudit   contextKey = "audit"
)

// Auth valida o JWT de acesso e injeta uma sessão autenticada no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			id, err := jwtManager.ParseIdentity(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			annotate(r.Context(), id)
			ctx := WithSession(r.Context(), auth.SessionFor(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession grava a sessão no contexto.
func WithSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, sess)
}

// GetSession recupera a sessão; sem Auth devolve sessão anônima.
func GetSession(ctx context.Context) *auth.Session {
	if sess, ok := ctx.Value(contextKeySession).(*auth.Session); ok && sess != nil {
		return sess
	}
	return auth.NewSession()
}

// GetIdentity atalho para a identidade autenticada.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	return GetSession(ctx).CurrentUser()
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

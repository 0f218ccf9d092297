package middleware

import (
	"errors"
	"net/http"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/repo"
)

// RequirePerfis restringe a rota aos perfis informados (lista vazia: qualquer autenticado).
func RequirePerfis(perfis ...repo.Perfil) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := GetSession(r.Context()).Require(perfis...)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, auth.ErrForbidden):
				writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito ao seu perfil")
			default:
				writeError(w, http.StatusUnauthorized, "AUTH", "autenticação necessária")
			}
		})
	}
}

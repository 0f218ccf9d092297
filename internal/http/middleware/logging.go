package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/visa/internal/auth"
)

// audit recebe a identidade resolvida pelo Auth mais adiante na cadeia.
type audit struct {
	identity *auth.Identity
}

func annotate(ctx context.Context, id auth.Identity) {
	if a, ok := ctx.Value(contextKeyAudit).(*audit); ok {
		a.identity = &id
	}
}

// Logging escreve um log estruturado por requisição.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		a := &audit{}

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), contextKeyAudit, a)))

		event := log.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", ww.Status()).Dur("duration", time.Since(start))

		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			event = event.Str("request_id", reqID)
		}
		event = event.Str("ip", remoteHost(r))
		if ua := r.Header.Get("User-Agent"); ua != "" {
			event = event.Str("user_agent", ua)
		}
		if a.identity != nil {
			event = event.Int("usuario_id", a.identity.ID).Str("perfil", string(a.identity.Perfil))
		}

		event.Msg("http_request")
	})
}

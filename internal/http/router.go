package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gestaozabele/visa/internal/config"
	httpmiddleware "github.com/gestaozabele/visa/internal/http/middleware"
	"github.com/gestaozabele/visa/internal/inspecao"
	"github.com/gestaozabele/visa/internal/notificacao"
	"github.com/gestaozabele/visa/internal/repo"
	"github.com/gestaozabele/visa/internal/service"
)

// Deps reúne os serviços expostos pela API.
type Deps struct {
	Auth         *service.AuthService
	Inspecoes    *inspecao.Service
	Notificacoes *notificacao.Deriver
	Nomes        inspecao.NameResolver
}

type Handler struct {
	cfg           *config.Config
	authService   *service.AuthService
	inspecoes     *inspecao.Service
	notificacoes  *notificacao.Deriver
	nomes         inspecao.NameResolver
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	loginLimiter  *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	h := &Handler{
		cfg:           cfg,
		authService:   deps.Auth,
		inspecoes:     deps.Inspecoes,
		notificacoes:  deps.Notificacoes,
		nomes:         deps.Nomes,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst*2),
		loginLimiter:  httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Route("/auth", func(a chi.Router) {
			a.With(httpmiddleware.LoginRateLimit(h.loginLimiter)).Post("/login", h.Login)
			a.Post("/refresh", h.Refresh)
			a.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/auth/me", h.Me)

		private.Route("/inspecoes", func(i chi.Router) {
			i.Get("/", h.ListInspecoes)
			i.Post("/", h.CreateInspecao)
			i.Get("/vencidas", h.ListVencidas)
			i.Get("/proximas", h.ListProximas)
			i.Post("/exportar", h.ExportInspecoes)
			i.Get("/{id}", h.GetInspecao)
			i.Patch("/{id}", h.UpdateInspecao)
			i.Post("/{id}/concluir", h.ConcludeInspecao)
		})

		private.Get("/estatisticas", h.Estatisticas)
		private.Get("/indicadores", h.Indicadores)
		private.Get("/notificacoes", h.Notificacoes)

		private.Group(func(gestao chi.Router) {
			gestao.Use(httpmiddleware.RequirePerfis(repo.PerfilCoordenador, repo.PerfilGerencia))
			gestao.Get("/coordenacao/inspetores", h.Inspetores)
			gestao.Get("/coordenacao/criticos", h.Criticos)
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

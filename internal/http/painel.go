package http

import (
	"net/http"
	"strconv"

	"github.com/gestaozabele/visa/internal/inspecao"
	"github.com/gestaozabele/visa/internal/notificacao"
)

// Estatisticas resume o painel do usuário.
func (h *Handler) Estatisticas(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	stats, err := h.inspecoes.Statistics(r.Context(), inspecao.ScopeOf(viewer))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// Indicadores devolve os gráficos do painel gerencial no escopo do usuário.
func (h *Handler) Indicadores(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	ind, err := h.inspecoes.Indicators(r.Context(), inspecao.ScopeOf(viewer))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ind)
}

type notificacoesResponse struct {
	Resumo notificacao.Resumo        `json:"resumo"`
	Total  int                       `json:"total"`
	Itens  []notificacao.Notificacao `json:"itens"`
}

// Notificacoes lista os alertas de prazo do usuário (?limite= corta a lista).
func (h *Handler) Notificacoes(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	list, err := h.notificacoes.Notifications(r.Context(), viewer.ID, viewer.Perfil)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	limite := -1
	if raw := r.URL.Query().Get("limite"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "limite inválido", nil)
			return
		}
		limite = n
	}
	resumo := notificacao.Summary(list)
	itens := notificacao.Top(list, limite)
	if itens == nil {
		itens = []notificacao.Notificacao{}
	}
	WriteJSON(w, http.StatusOK, notificacoesResponse{Resumo: resumo, Total: resumo.Total(), Itens: itens})
}

// Inspetores resume a carga por inspetor.
func (h *Handler) Inspetores(w http.ResponseWriter, r *http.Request) {
	list, err := h.inspecoes.InspectorSummary(r.Context(), h.nomes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// Criticos lista os processos que exigem ação da coordenação.
func (h *Handler) Criticos(w http.ResponseWriter, r *http.Request) {
	list, err := h.inspecoes.Critical(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []inspecao.Critico{}
	}
	WriteJSON(w, http.StatusOK, list)
}

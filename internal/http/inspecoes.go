package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/visa/internal/auth"
	httpmiddleware "github.com/gestaozabele/visa/internal/http/middleware"
	"github.com/gestaozabele/visa/internal/inspecao"
	"github.com/gestaozabele/visa/internal/util"
)

const dateLayout = "2006-01-02"

type inspecaoView struct {
	inspecao.Inspecao
	Situacao inspecao.Situacao `json:"situacao"`
}

func (h *Handler) views(items []inspecao.Inspecao) []inspecaoView {
	hoje := h.inspecoes.Today()
	janela := h.inspecoes.JanelaDias()
	out := make([]inspecaoView, 0, len(items))
	for _, it := range items {
		out = append(out, inspecaoView{Inspecao: it, Situacao: it.Situacao(hoje, janela)})
	}
	return out
}

func (h *Handler) view(it inspecao.Inspecao) inspecaoView {
	return inspecaoView{Inspecao: it, Situacao: it.Situacao(h.inspecoes.Today(), h.inspecoes.JanelaDias())}
}

func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão ausente", nil)
	}
	return id, ok
}

func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.Local)
}

func parseOptionalDate(raw string, field string, verr *util.ValidationError) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := parseDate(raw)
	if err != nil {
		verr.Add(errors.New(field + " deve estar no formato AAAA-MM-DD"))
		return nil
	}
	return &d
}

type filterRequest struct {
	Busca      string `json:"busca"`
	Risco      string `json:"risco"`
	Situacao   string `json:"situacao"`
	InspetorID int    `json:"inspetor_id"`
	De         string `json:"de"`
	Ate        string `json:"ate"`
}

func (f filterRequest) toFilter() (inspecao.Filter, error) {
	verr := &util.ValidationError{}
	out := inspecao.Filter{
		Busca:      f.Busca,
		InspetorID: f.InspetorID,
		De:         parseOptionalDate(f.De, "de", verr),
		Ate:        parseOptionalDate(f.Ate, "ate", verr),
	}
	if strings.TrimSpace(f.Risco) != "" {
		risco, err := inspecao.ParseRisco(f.Risco)
		if err != nil {
			verr.Add(errors.New("risco inválido"))
		}
		out.Risco = risco
	}
	if s := strings.ToLower(strings.TrimSpace(f.Situacao)); s != "" {
		switch sit := inspecao.Situacao(s); sit {
		case inspecao.SituacaoVencido, inspecao.SituacaoProximo, inspecao.SituacaoPendente, inspecao.SituacaoConcluido:
			out.Situacao = sit
		default:
			verr.Add(errors.New("situação inválida"))
		}
	}
	return out, verr.Err()
}

func filterFromQuery(r *http.Request) (filterRequest, error) {
	q := r.URL.Query()
	f := filterRequest{
		Busca:    q.Get("busca"),
		Risco:    q.Get("risco"),
		Situacao: q.Get("situacao"),
		De:       q.Get("de"),
		Ate:      q.Get("ate"),
	}
	if raw := q.Get("inspetor_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			verr := &util.ValidationError{}
			verr.Add(errors.New("inspetor_id inválido"))
			return f, verr
		}
		f.InspetorID = id
	}
	return f, nil
}

// ListInspecoes aplica os filtros da listagem sobre as inspeções visíveis.
func (h *Handler) ListInspecoes(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	req, err := filterFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items, err := h.inspecoes.Search(r.Context(), viewer, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.views(items))
}

type createInspecaoRequest struct {
	Estabelecimento    string `json:"estabelecimento"`
	CNPJ               string `json:"cnpj"`
	AtividadePrincipal string `json:"atividade_principal"`
	ClassificacaoRisco string `json:"classificacao_risco"`
	DataInspecao       string `json:"data_inspecao"`
	Observacoes        string `json:"observacoes"`
	PrazoInspetor      string `json:"prazo_inspetor"`
	Territorio         string `json:"territorio"`
}

func (req createInspecaoRequest) toInput() (inspecao.CreateInput, error) {
	verr := &util.ValidationError{}
	in := inspecao.CreateInput{
		Estabelecimento:    req.Estabelecimento,
		CNPJ:               req.CNPJ,
		AtividadePrincipal: req.AtividadePrincipal,
		ClassificacaoRisco: inspecao.Risco(req.ClassificacaoRisco),
		Observacoes:        req.Observacoes,
		Territorio:         req.Territorio,
	}
	if raw := strings.TrimSpace(req.DataInspecao); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			verr.Add(errors.New("data_inspecao deve estar no formato AAAA-MM-DD"))
		}
		in.DataInspecao = d
	}
	in.PrazoInspetor = parseOptionalDate(req.PrazoInspetor, "prazo_inspetor", verr)
	return in, verr.Err()
}

// CreateInspecao registra uma visita em nome do usuário autenticado.
func (h *Handler) CreateInspecao(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	var req createInspecaoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	created, err := h.inspecoes.Register(r.Context(), in, viewer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, h.view(created))
}

// GetInspecao devolve um registro respeitando a visibilidade do perfil.
func (h *Handler) GetInspecao(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	it, err := h.inspecoes.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.view(it))
}

// Datas em string vazia limpam o prazo correspondente.
type updateInspecaoRequest struct {
	Estabelecimento     *string `json:"estabelecimento"`
	CNPJ                *string `json:"cnpj"`
	AtividadePrincipal  *string `json:"atividade_principal"`
	ClassificacaoRisco  *string `json:"classificacao_risco"`
	DataInspecao        *string `json:"data_inspecao"`
	Observacoes         *string `json:"observacoes"`
	PrazoInspetor       *string `json:"prazo_inspetor"`
	PrazoCoordenacao    *string `json:"prazo_coordenacao"`
	Status              *string `json:"status"`
	Territorio          *string `json:"territorio"`
	ComentariosInternos *string `json:"comentarios_internos"`
}

func (req updateInspecaoRequest) toPatch() (inspecao.Patch, error) {
	verr := &util.ValidationError{}
	p := inspecao.Patch{
		Estabelecimento:     req.Estabelecimento,
		CNPJ:                req.CNPJ,
		AtividadePrincipal:  req.AtividadePrincipal,
		Observacoes:         req.Observacoes,
		Territorio:          req.Territorio,
		ComentariosInternos: req.ComentariosInternos,
	}
	if req.ClassificacaoRisco != nil {
		risco, err := inspecao.ParseRisco(*req.ClassificacaoRisco)
		if err != nil {
			verr.Add(errors.New("classificação de risco inválida"))
		} else {
			p.ClassificacaoRisco = &risco
		}
	}
	if req.Status != nil {
		status, err := inspecao.ParseStatus(*req.Status)
		if err != nil {
			verr.Add(errors.New("status inválido"))
		} else {
			p.Status = &status
		}
	}
	if req.DataInspecao != nil {
		d, err := parseDate(*req.DataInspecao)
		if err != nil {
			verr.Add(errors.New("data_inspecao deve estar no formato AAAA-MM-DD"))
		} else {
			p.DataInspecao = &d
		}
	}
	if req.PrazoInspetor != nil {
		if strings.TrimSpace(*req.PrazoInspetor) == "" {
			p.ClearPrazoInspetor = true
		} else {
			p.PrazoInspetor = parseOptionalDate(*req.PrazoInspetor, "prazo_inspetor", verr)
		}
	}
	if req.PrazoCoordenacao != nil {
		if strings.TrimSpace(*req.PrazoCoordenacao) == "" {
			p.ClearPrazoCoordenacao = true
		} else {
			p.PrazoCoordenacao = parseOptionalDate(*req.PrazoCoordenacao, "prazo_coordenacao", verr)
		}
	}
	return p, verr.Err()
}

// UpdateInspecao aplica edição parcial; campos de coordenação exigem perfil de gestão.
func (h *Handler) UpdateInspecao(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	var req updateInspecaoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := h.inspecoes.UpdateAs(r.Context(), viewer, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.view(updated))
}

// ConcludeInspecao marca a inspeção como concluída.
func (h *Handler) ConcludeInspecao(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	updated, err := h.inspecoes.Conclude(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.view(updated))
}

// ListVencidas lista pendentes com prazo efetivo já passado.
func (h *Handler) ListVencidas(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	items, err := h.inspecoes.OverdueFor(r.Context(), viewer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.views(items))
}

// ListProximas lista pendentes que vencem na janela (?dias= sobrescreve).
func (h *Handler) ListProximas(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	dias := h.inspecoes.JanelaDias()
	if raw := r.URL.Query().Get("dias"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "dias inválido", nil)
			return
		}
		dias = n
	}
	items, err := h.inspecoes.UpcomingFor(r.Context(), viewer, dias)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.views(items))
}

// ExportInspecoes exporta o resultado filtrado em CSV ou XLSX.
func (h *Handler) ExportInspecoes(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity(w, r)
	if !ok {
		return
	}
	var req struct {
		Formato string        `json:"formato"`
		Filtros filterRequest `json:"filtros"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Formato == "" {
		req.Formato = h.cfg.ExportFormat
	}
	format, err := inspecao.ParseFormat(req.Formato)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	filter, err := req.Filtros.toFilter()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items, err := h.inspecoes.Search(r.Context(), viewer, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	result, err := h.inspecoes.Export(r.Context(), items, format)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

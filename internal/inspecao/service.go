package inspecao

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/repo"
	"github.com/gestaozabele/visa/internal/util"
)

// Config ajusta regras derivadas de data.
type Config struct {
	JanelaDias int
	Clock      util.Clock
}

// Service concentra o ciclo de vida das inspeções e as leituras derivadas.
type Service struct {
	repo     Repository
	exporter *Exporter
	janela   int
	now      util.Clock
	logger   zerolog.Logger
}

// NewService cria o serviço; exporter pode ser nil quando exportação não é usada.
func NewService(r Repository, exporter *Exporter, cfg Config, logger zerolog.Logger) *Service {
	if cfg.JanelaDias <= 0 {
		cfg.JanelaDias = DefaultJanelaDias
	}
	if cfg.Clock == nil {
		cfg.Clock = util.Now
	}
	return &Service{repo: r, exporter: exporter, janela: cfg.JanelaDias, now: cfg.Clock, logger: logger}
}

// Today devolve o instante usado como "hoje" nas classificações.
func (s *Service) Today() time.Time {
	return s.now()
}

// JanelaDias expõe a antecedência configurada para prazos próximos.
func (s *Service) JanelaDias() int {
	return s.janela
}

// Scope restringe leituras à visão de um usuário.
type Scope struct {
	UsuarioID int
	Perfil    repo.Perfil
}

// ScopeOf monta o escopo a partir da identidade autenticada.
func ScopeOf(id auth.Identity) *Scope {
	return &Scope{UsuarioID: id.ID, Perfil: id.Perfil}
}

// Visible filtra os registros que o escopo pode ver.
func (sc *Scope) Visible(items []Inspecao) []Inspecao {
	if sc == nil || auth.SeesAll(sc.Perfil) {
		return items
	}
	out := make([]Inspecao, 0, len(items))
	for _, it := range items {
		if it.InspetorID == sc.UsuarioID {
			out = append(out, it)
		}
	}
	return out
}

// ValidateInput executa todas as checagens de campo e devolve *util.ValidationError
// com todas as mensagens, ou nil.
func ValidateInput(in CreateInput, hoje time.Time) error {
	var verr util.ValidationError
	verr.Add(util.ValidateEstabelecimento(in.Estabelecimento))
	verr.Add(util.ValidateCNPJ(in.CNPJ))
	verr.Add(util.ValidateAtividade(in.AtividadePrincipal))
	if _, err := ParseRisco(string(in.ClassificacaoRisco)); err != nil {
		verr.Add(err)
	}
	verr.Add(util.ValidateDataInspecao(in.DataInspecao, hoje))
	verr.Add(util.ValidatePrazo(in.PrazoInspetor, in.DataInspecao))
	verr.Add(util.ValidateObservacoes(in.Observacoes))
	return verr.Err()
}

// Create grava o registro sem validar: status pendente, sem prazo da
// coordenação e com o criador como inspetor responsável.
func (s *Service) Create(ctx context.Context, in CreateInput, ownerID int) (Inspecao, error) {
	now := s.now()
	rec := Inspecao{
		ID:                 util.NewID(),
		Estabelecimento:    in.Estabelecimento,
		CNPJ:               in.CNPJ,
		AtividadePrincipal: in.AtividadePrincipal,
		ClassificacaoRisco: in.ClassificacaoRisco,
		DataInspecao:       in.DataInspecao,
		Observacoes:        in.Observacoes,
		PrazoInspetor:      in.PrazoInspetor,
		Status:             StatusPendente,
		InspetorID:         ownerID,
		Territorio:         in.Territorio,
		DataCriacao:        now,
		DataAtualizacao:    now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.logger.Error().Err(err).Int("inspetor_id", ownerID).Msg("inspeção: falha ao criar")
		return Inspecao{}, err
	}
	s.logger.Info().Str("id", rec.ID).Int("inspetor_id", ownerID).Msg("inspeção criada")
	return rec, nil
}

// Register é o caminho de cadastro: valida tudo antes de qualquer escrita,
// normaliza o CNPJ e herda o território do inspetor quando omitido.
func (s *Service) Register(ctx context.Context, in CreateInput, owner auth.Identity) (Inspecao, error) {
	in.Estabelecimento = strings.TrimSpace(in.Estabelecimento)
	in.AtividadePrincipal = strings.TrimSpace(in.AtividadePrincipal)
	in.Observacoes = strings.TrimSpace(in.Observacoes)
	if r, err := ParseRisco(string(in.ClassificacaoRisco)); err == nil {
		in.ClassificacaoRisco = r
	}
	if err := ValidateInput(in, s.now()); err != nil {
		return Inspecao{}, err
	}
	in.CNPJ = util.DigitsOnly(in.CNPJ)
	if strings.TrimSpace(in.Territorio) == "" {
		in.Territorio = owner.Territorio
	}
	return s.Create(ctx, in, owner.ID)
}

// Update mescla os campos do patch e renova a data de atualização.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Inspecao, error) {
	return s.repo.Update(ctx, id, func(rec *Inspecao) error {
		if err := patch.apply(rec); err != nil {
			return err
		}
		rec.DataAtualizacao = s.now()
		return nil
	})
}

// UpdateAs aplica o patch com as regras de perfil: inspetores só alteram os
// próprios registros e nunca os campos da coordenação. Campos de texto e datas
// presentes no patch passam pelas mesmas validações do cadastro.
func (s *Service) UpdateAs(ctx context.Context, viewer auth.Identity, id string, patch Patch) (Inspecao, error) {
	isInspetor := viewer.Perfil == repo.PerfilInspetor
	if isInspetor && patch.touchesCoordination() {
		return Inspecao{}, auth.ErrForbidden
	}
	if patch.CNPJ != nil {
		d := util.DigitsOnly(*patch.CNPJ)
		patch.CNPJ = &d
	}

	updated, err := s.repo.Update(ctx, id, func(rec *Inspecao) error {
		if isInspetor && rec.InspetorID != viewer.ID {
			return auth.ErrForbidden
		}
		if err := s.validatePatch(patch, *rec); err != nil {
			return err
		}
		if err := patch.apply(rec); err != nil {
			return err
		}
		rec.DataAtualizacao = s.now()
		return nil
	})
	if err != nil {
		return Inspecao{}, err
	}
	s.logger.Info().Str("id", id).Int("usuario_id", viewer.ID).Msg("inspeção atualizada")
	return redact(updated, viewer.Perfil), nil
}

// Conclude marca a inspeção como concluída.
func (s *Service) Conclude(ctx context.Context, viewer auth.Identity, id string) (Inspecao, error) {
	st := StatusConcluido
	return s.UpdateAs(ctx, viewer, id, Patch{Status: &st})
}

func (s *Service) validatePatch(p Patch, current Inspecao) error {
	var verr util.ValidationError
	if p.Estabelecimento != nil {
		verr.Add(util.ValidateEstabelecimento(*p.Estabelecimento))
	}
	if p.CNPJ != nil {
		verr.Add(util.ValidateCNPJ(*p.CNPJ))
	}
	if p.AtividadePrincipal != nil {
		verr.Add(util.ValidateAtividade(*p.AtividadePrincipal))
	}
	if p.Observacoes != nil {
		verr.Add(util.ValidateObservacoes(*p.Observacoes))
	}
	dataInspecao := current.DataInspecao
	if p.DataInspecao != nil {
		verr.Add(util.ValidateDataInspecao(*p.DataInspecao, s.now()))
		dataInspecao = *p.DataInspecao
	}
	// mudar a data reavalia também os prazos já gravados
	dataMudou := p.DataInspecao != nil
	if prazo := resultingPrazo(current.PrazoInspetor, p.PrazoInspetor, p.ClearPrazoInspetor); p.PrazoInspetor != nil || dataMudou {
		verr.Add(util.ValidatePrazo(prazo, dataInspecao))
	}
	if prazo := resultingPrazo(current.PrazoCoordenacao, p.PrazoCoordenacao, p.ClearPrazoCoordenacao); p.PrazoCoordenacao != nil || dataMudou {
		verr.Add(util.ValidatePrazo(prazo, dataInspecao))
	}
	return verr.Err()
}

func resultingPrazo(current, patched *time.Time, clear bool) *time.Time {
	switch {
	case clear:
		return nil
	case patched != nil:
		return patched
	}
	return current
}

// Get devolve uma inspeção visível para o usuário.
func (s *Service) Get(ctx context.Context, viewer auth.Identity, id string) (Inspecao, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Inspecao{}, err
	}
	for _, it := range items {
		if it.ID != id {
			continue
		}
		if !auth.SeesAll(viewer.Perfil) && it.InspetorID != viewer.ID {
			return Inspecao{}, auth.ErrForbidden
		}
		return redact(it, viewer.Perfil), nil
	}
	return Inspecao{}, ErrNotFound
}

// ListForUser aplica a regra de visibilidade: inspetor vê só as próprias
// inspeções, coordenação e gerência veem todas.
func (s *Service) ListForUser(ctx context.Context, userID int, perfil repo.Perfil) ([]Inspecao, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items = (&Scope{UsuarioID: userID, Perfil: perfil}).Visible(items)
	return redactAll(items, perfil), nil
}

// Overdue lista pendentes com prazo do inspetor ou da coordenação já vencido.
func (s *Service) Overdue(ctx context.Context) ([]Inspecao, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return overdue(items, s.now()), nil
}

// Upcoming lista pendentes não vencidas com prazo em [hoje, hoje+dias].
func (s *Service) Upcoming(ctx context.Context, dias int) ([]Inspecao, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return upcoming(items, s.now(), dias), nil
}

// OverdueFor aplica a visibilidade do usuário sobre Overdue.
func (s *Service) OverdueFor(ctx context.Context, viewer auth.Identity) ([]Inspecao, error) {
	items, err := s.Overdue(ctx)
	if err != nil {
		return nil, err
	}
	return redactAll(ScopeOf(viewer).Visible(items), viewer.Perfil), nil
}

// UpcomingFor aplica a visibilidade do usuário sobre Upcoming.
func (s *Service) UpcomingFor(ctx context.Context, viewer auth.Identity, dias int) ([]Inspecao, error) {
	items, err := s.Upcoming(ctx, dias)
	if err != nil {
		return nil, err
	}
	return redactAll(ScopeOf(viewer).Visible(items), viewer.Perfil), nil
}

func overdue(items []Inspecao, hoje time.Time) []Inspecao {
	var out []Inspecao
	for _, it := range items {
		if it.Vencida(hoje) {
			out = append(out, it)
		}
	}
	return out
}

func upcoming(items []Inspecao, hoje time.Time, dias int) []Inspecao {
	var out []Inspecao
	for _, it := range items {
		if it.Proxima(hoje, dias) {
			out = append(out, it)
		}
	}
	return out
}

// Estatisticas resume o volume e o cumprimento das inspeções.
type Estatisticas struct {
	Total                 int     `json:"total"`
	Pendentes             int     `json:"pendentes"`
	Concluidas            int     `json:"concluidas"`
	Vencidas              int     `json:"vencidas"`
	PercentualCumprimento float64 `json:"percentual_cumprimento"`
}

// Statistics conta registros no escopo (nil = todos), inclusive as vencidas.
func (s *Service) Statistics(ctx context.Context, scope *Scope) (Estatisticas, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Estatisticas{}, err
	}
	return statistics(scope.Visible(items), s.now()), nil
}

func statistics(items []Inspecao, hoje time.Time) Estatisticas {
	st := Estatisticas{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case StatusPendente:
			st.Pendentes++
		case StatusConcluido:
			st.Concluidas++
		}
	}
	st.Vencidas = len(overdue(items, hoje))
	st.PercentualCumprimento = percent(st.Concluidas, st.Total)
	return st
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Filter reproduz os filtros da listagem de inspeções.
type Filter struct {
	Busca      string
	Risco      Risco
	Situacao   Situacao
	InspetorID int
	De, Ate    *time.Time
}

// Search lista as inspeções visíveis ao usuário que passam no filtro.
func (s *Service) Search(ctx context.Context, viewer auth.Identity, f Filter) ([]Inspecao, error) {
	items, err := s.ListForUser(ctx, viewer.ID, viewer.Perfil)
	if err != nil {
		return nil, err
	}
	hoje := s.now()
	busca := strings.ToLower(strings.TrimSpace(f.Busca))
	buscaCNPJ := util.DigitsOnly(busca)

	out := make([]Inspecao, 0, len(items))
	for _, it := range items {
		if busca != "" && !strings.Contains(strings.ToLower(it.Estabelecimento), busca) &&
			(buscaCNPJ == "" || !strings.Contains(it.CNPJ, buscaCNPJ)) {
			continue
		}
		if f.Risco != "" && it.ClassificacaoRisco != f.Risco {
			continue
		}
		if f.Situacao != "" && it.Situacao(hoje, s.janela) != f.Situacao {
			continue
		}
		if f.InspetorID != 0 && it.InspetorID != f.InspetorID {
			continue
		}
		if f.De != nil && util.DaysBetween(*f.De, it.DataInspecao) < 0 {
			continue
		}
		if f.Ate != nil && util.DaysBetween(it.DataInspecao, *f.Ate) < 0 {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// Export grava o subconjunto informado em arquivo com carimbo de data/hora.
func (s *Service) Export(ctx context.Context, items []Inspecao, format Format) (ExportResult, error) {
	if s.exporter == nil {
		return ExportResult{}, ErrExportDisabled
	}
	return s.exporter.Export(ctx, items, format)
}

func redact(it Inspecao, perfil repo.Perfil) Inspecao {
	if !auth.SeesAll(perfil) {
		it.ComentariosInternos = ""
	}
	return it
}

func redactAll(items []Inspecao, perfil repo.Perfil) []Inspecao {
	if auth.SeesAll(perfil) {
		return items
	}
	for i := range items {
		items[i].ComentariosInternos = ""
	}
	return items
}

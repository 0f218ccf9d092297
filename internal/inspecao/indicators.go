package inspecao

import (
	"context"
	"sort"
	"time"

	"github.com/gestaozabele/visa/internal/util"
)

// NomeDesconhecido é exibido para inspetores sem cadastro.
const NomeDesconhecido = "Desconhecido"

// NameResolver resolve ids de usuário em nomes de exibição.
type NameResolver interface {
	Names(ctx context.Context) (map[int]string, error)
}

// MesStatus conta inspeções de um mês (YYYY-MM) por status.
type MesStatus struct {
	Mes        string `json:"mes"`
	Pendentes  int    `json:"pendentes"`
	Concluidas int    `json:"concluidas"`
}

// Indicadores alimenta o painel gerencial.
type Indicadores struct {
	Total                 int           `json:"total"`
	PercentualCumprimento float64       `json:"percentual_cumprimento"`
	TempoMedioConclusao   float64       `json:"tempo_medio_conclusao_dias"`
	InspecoesNoMes        int           `json:"inspecoes_no_mes"`
	PercentualAltoRisco   float64       `json:"percentual_alto_risco"`
	PorRisco              map[Risco]int `json:"por_risco"`
	PorMes                []MesStatus   `json:"por_mes"`
}

// Indicators calcula os indicadores do escopo (nil = todos).
func (s *Service) Indicators(ctx context.Context, scope *Scope) (Indicadores, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Indicadores{}, err
	}
	return indicators(scope.Visible(items), s.now()), nil
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func indicators(items []Inspecao, hoje time.Time) Indicadores {
	ind := Indicadores{Total: len(items), PorRisco: make(map[Risco]int, len(Riscos))}
	for _, r := range Riscos {
		ind.PorRisco[r] = 0
	}

	var (
		concluidas int
		diasTotal  int
		meses      = map[string]*MesStatus{}
	)
	for _, it := range items {
		ind.PorRisco[it.ClassificacaoRisco]++
		if sameMonth(it.DataInspecao, hoje) {
			ind.InspecoesNoMes++
		}

		key := it.DataInspecao.Format("2006-01")
		m, ok := meses[key]
		if !ok {
			m = &MesStatus{Mes: key}
			meses[key] = m
		}
		switch it.Status {
		case StatusConcluido:
			m.Concluidas++
			concluidas++
			diasTotal += util.DaysBetween(it.DataInspecao, it.DataAtualizacao)
		case StatusPendente:
			m.Pendentes++
		}
	}

	ind.PercentualCumprimento = percent(concluidas, ind.Total)
	ind.PercentualAltoRisco = percent(ind.PorRisco[RiscoAlto], ind.Total)
	if concluidas > 0 {
		ind.TempoMedioConclusao = float64(diasTotal) / float64(concluidas)
	}

	ind.PorMes = make([]MesStatus, 0, len(meses))
	for _, m := range meses {
		ind.PorMes = append(ind.PorMes, *m)
	}
	sort.Slice(ind.PorMes, func(i, j int) bool { return ind.PorMes[i].Mes < ind.PorMes[j].Mes })
	return ind
}

// ResumoInspetor agrega a carga de trabalho de um inspetor.
type ResumoInspetor struct {
	InspetorID int    `json:"inspetor_id"`
	Nome       string `json:"nome"`
	Total      int    `json:"total"`
	Pendentes  int    `json:"pendentes"`
	Vencidas   int    `json:"vencidas"`
	NoMes      int    `json:"no_mes"`
}

// InspectorSummary agrupa as inspeções por inspetor, em ordem de id.
func (s *Service) InspectorSummary(ctx context.Context, names NameResolver) ([]ResumoInspetor, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	nomes := map[int]string{}
	if names != nil {
		if nomes, err = names.Names(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("inspeção: nomes de inspetores indisponíveis")
			nomes = map[int]string{}
		}
	}
	return inspectorSummary(items, nomes, s.now()), nil
}

func inspectorSummary(items []Inspecao, nomes map[int]string, hoje time.Time) []ResumoInspetor {
	byID := map[int]*ResumoInspetor{}
	for _, it := range items {
		r, ok := byID[it.InspetorID]
		if !ok {
			nome, found := nomes[it.InspetorID]
			if !found {
				nome = NomeDesconhecido
			}
			r = &ResumoInspetor{InspetorID: it.InspetorID, Nome: nome}
			byID[it.InspetorID] = r
		}
		r.Total++
		if it.Status == StatusPendente {
			r.Pendentes++
		}
		if it.Vencida(hoje) {
			r.Vencidas++
		}
		if sameMonth(it.DataInspecao, hoje) {
			r.NoMes++
		}
	}

	out := make([]ResumoInspetor, 0, len(byID))
	for _, r := range byID {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InspetorID < out[j].InspetorID })
	return out
}

// Urgencia de um processo crítico.
type Urgencia string

const (
	UrgenciaAlta  Urgencia = "alta"
	UrgenciaMedia Urgencia = "media"
)

// Critico é uma inspeção pendente que exige atenção da coordenação.
type Critico struct {
	Inspecao
	Urgencia Urgencia `json:"urgencia"`
	// Dias até o prazo (media) ou desde o vencimento (alta).
	Dias int `json:"dias"`
}

// Critical lista pendentes vencidas (alta) ou a até janela dias do prazo (media).
func (s *Service) Critical(ctx context.Context) ([]Critico, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return critical(items, s.now(), s.janela), nil
}

func critical(items []Inspecao, hoje time.Time, janela int) []Critico {
	var out []Critico
	for _, it := range items {
		if it.Status != StatusPendente {
			continue
		}
		var (
			urg  Urgencia
			dias int
		)
		// prazo da coordenação prevalece, salvo quando já há urgência alta
		for _, p := range it.Prazos() {
			d := util.DaysBetween(hoje, p)
			switch {
			case d < 0:
				urg, dias = UrgenciaAlta, -d
			case d <= janela && urg != UrgenciaAlta:
				urg, dias = UrgenciaMedia, d
			}
		}
		if urg != "" {
			out = append(out, Critico{Inspecao: it, Urgencia: urg, Dias: dias})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Urgencia != out[j].Urgencia {
			return out[i].Urgencia == UrgenciaAlta
		}
		if out[i].Urgencia == UrgenciaAlta {
			return out[i].Dias > out[j].Dias
		}
		return out[i].Dias < out[j].Dias
	})
	return out
}

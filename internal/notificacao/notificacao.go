package notificacao

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/inspecao"
	"github.com/gestaozabele/visa/internal/repo"
)

// Tipo do alerta de prazo.
type Tipo string

const (
	TipoVencida           Tipo = "vencida"
	TipoProximaVencimento Tipo = "proxima_vencimento"
)

// Notificacao é um alerta derivado de uma inspeção pendente; nada é persistido.
type Notificacao struct {
	Tipo            Tipo              `json:"tipo"`
	Titulo          string            `json:"titulo"`
	Mensagem        string            `json:"mensagem"`
	Estabelecimento string            `json:"estabelecimento"`
	Urgencia        inspecao.Urgencia `json:"urgencia"`
	Data            *time.Time        `json:"data"`
	InspecaoID      string            `json:"inspecao_id"`
}

// Source fornece os conjuntos vencido/próximo já calculados.
type Source interface {
	Overdue(ctx context.Context) ([]inspecao.Inspecao, error)
	Upcoming(ctx context.Context, dias int) ([]inspecao.Inspecao, error)
}

// Deriver monta a lista de alertas de cada usuário.
type Deriver struct {
	src    Source
	janela int
}

// NewDeriver usa janela dias de antecedência para "próximo"; <= 0 assume o padrão.
func NewDeriver(src Source, janela int) *Deriver {
	if janela <= 0 {
		janela = inspecao.DefaultJanelaDias
	}
	return &Deriver{src: src, janela: janela}
}

// Notifications devolve vencidas e próximas visíveis ao usuário, em ordem
// crescente de data; alertas sem data vêm primeiro.
func (d *Deriver) Notifications(ctx context.Context, userID int, perfil repo.Perfil) ([]Notificacao, error) {
	vencidas, err := d.src.Overdue(ctx)
	if err != nil {
		return nil, err
	}
	proximas, err := d.src.Upcoming(ctx, d.janela)
	if err != nil {
		return nil, err
	}

	out := make([]Notificacao, 0, len(vencidas)+len(proximas))
	for _, it := range vencidas {
		if visible(it, userID, perfil) {
			out = append(out, build(it, TipoVencida))
		}
	}
	for _, it := range proximas {
		if visible(it, userID, perfil) {
			out = append(out, build(it, TipoProximaVencimento))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Data, out[j].Data
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		}
		return a.Before(*b)
	})
	return out, nil
}

func visible(it inspecao.Inspecao, userID int, perfil repo.Perfil) bool {
	return auth.SeesAll(perfil) || it.InspetorID == userID
}

func build(it inspecao.Inspecao, tipo Tipo) Notificacao {
	n := Notificacao{
		Tipo:            tipo,
		Mensagem:        fmt.Sprintf("Estabelecimento: %s", it.Estabelecimento),
		Estabelecimento: it.Estabelecimento,
		Data:            it.PrazoReferencia(),
		InspecaoID:      it.ID,
	}
	if tipo == TipoVencida {
		n.Titulo, n.Urgencia = "Inspeção Vencida", inspecao.UrgenciaAlta
	} else {
		n.Titulo, n.Urgencia = "Prazo Próximo", inspecao.UrgenciaMedia
	}
	return n
}

// Resumo conta alertas por tipo para o painel.
type Resumo struct {
	Vencidas int `json:"vencidas"`
	Proximas int `json:"proximas"`
}

// Total de alertas.
func (r Resumo) Total() int {
	return r.Vencidas + r.Proximas
}

// Summary agrega a lista por tipo.
func Summary(list []Notificacao) Resumo {
	var r Resumo
	for _, n := range list {
		switch n.Tipo {
		case TipoVencida:
			r.Vencidas++
		case TipoProximaVencimento:
			r.Proximas++
		}
	}
	return r
}

// Top devolve os n primeiros alertas.
func Top(list []Notificacao, n int) []Notificacao {
	if n < 0 || n >= len(list) {
		return list
	}
	return list[:n]
}

package inspecao

import (
	"time"

	"github.com/gestaozabele/visa/internal/util"
)

// DefaultJanelaDias é a antecedência, em dias, para um prazo contar como próximo.
const DefaultJanelaDias = 3

// Situacao é a urgência derivada na leitura; nunca é persistida.
type Situacao string

const (
	SituacaoVencido   Situacao = "vencido"
	SituacaoProximo   Situacao = "proximo"
	SituacaoPendente  Situacao = "pendente"
	SituacaoConcluido Situacao = "concluido"
)

// Prazos devolve os prazos definidos, do inspetor primeiro.
func (i Inspecao) Prazos() []time.Time {
	out := make([]time.Time, 0, 2)
	if i.PrazoInspetor != nil {
		out = append(out, *i.PrazoInspetor)
	}
	if i.PrazoCoordenacao != nil {
		out = append(out, *i.PrazoCoordenacao)
	}
	return out
}

// PrazoReferencia é o prazo que dispara alertas: o do inspetor, senão o da coordenação.
func (i Inspecao) PrazoReferencia() *time.Time {
	if i.PrazoInspetor != nil {
		return i.PrazoInspetor
	}
	return i.PrazoCoordenacao
}

// Vencida: pendente com algum prazo estritamente anterior a hoje.
func (i Inspecao) Vencida(hoje time.Time) bool {
	if i.Status != StatusPendente {
		return false
	}
	for _, p := range i.Prazos() {
		if util.DaysBetween(hoje, p) < 0 {
			return true
		}
	}
	return false
}

// Proxima: pendente, não vencida, com algum prazo em [hoje, hoje+dias].
func (i Inspecao) Proxima(hoje time.Time, dias int) bool {
	if i.Status != StatusPendente || i.Vencida(hoje) {
		return false
	}
	for _, p := range i.Prazos() {
		if d := util.DaysBetween(hoje, p); d >= 0 && d <= dias {
			return true
		}
	}
	return false
}

// Situacao classifica o registro. Pendentes sem prazo ficam como pendente.
func (i Inspecao) Situacao(hoje time.Time, dias int) Situacao {
	switch {
	case i.Status == StatusConcluido:
		return SituacaoConcluido
	case i.Vencida(hoje):
		return SituacaoVencido
	case i.Proxima(hoje, dias):
		return SituacaoProximo
	default:
		return SituacaoPendente
	}
}

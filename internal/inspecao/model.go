package inspecao

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound indica id de inspeção inexistente.
	ErrNotFound = errors.New("inspeção não encontrada")
	// ErrPersistence envolve falhas de leitura/gravação da tabela.
	ErrPersistence = errors.New("falha ao persistir inspeções")
	// ErrInvalidTransition impede reabrir inspeção concluída.
	ErrInvalidTransition = errors.New("inspeção concluída não pode voltar a pendente")
	ErrInvalidStatus     = errors.New("status inválido")
	ErrInvalidRisco      = errors.New("classificação de risco inválida")
	ErrInvalidFormat     = errors.New("formato de exportação inválido")
	ErrExportDisabled    = errors.New("exportação não configurada")
)

// Status do ciclo de vida; a única transição é pendente → concluido.
type Status string

const (
	StatusPendente  Status = "pendente"
	StatusConcluido Status = "concluido"
)

// ParseStatus normaliza e valida o status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPendente, StatusConcluido:
		return s, nil
	}
	return "", ErrInvalidStatus
}

// Risco é a classificação sanitária atribuída na inspeção.
type Risco string

const (
	RiscoBaixo Risco = "baixo"
	RiscoMedio Risco = "medio"
	RiscoAlto  Risco = "alto"
)

// Riscos em ordem crescente.
var Riscos = []Risco{RiscoBaixo, RiscoMedio, RiscoAlto}

// ParseRisco aceita também a grafia acentuada "médio".
func ParseRisco(raw string) (Risco, error) {
	r := strings.ToLower(strings.TrimSpace(raw))
	if r == "médio" {
		r = string(RiscoMedio)
	}
	switch Risco(r) {
	case RiscoBaixo, RiscoMedio, RiscoAlto:
		return Risco(r), nil
	}
	return "", ErrInvalidRisco
}

// Inspecao é um registro do diário de campo.
type Inspecao struct {
	ID                  string     `json:"id"`
	Estabelecimento     string     `json:"estabelecimento"`
	CNPJ                string     `json:"cnpj"`
	AtividadePrincipal  string     `json:"atividade_principal"`
	ClassificacaoRisco  Risco      `json:"classificacao_risco"`
	DataInspecao        time.Time  `json:"data_inspecao"`
	Observacoes         string     `json:"observacoes"`
	PrazoInspetor       *time.Time `json:"prazo_inspetor"`
	PrazoCoordenacao    *time.Time `json:"prazo_coordenacao"`
	Status              Status     `json:"status"`
	InspetorID          int        `json:"inspetor_id"`
	Territorio          string     `json:"territorio"`
	DataCriacao         time.Time  `json:"data_criacao"`
	DataAtualizacao     time.Time  `json:"data_atualizacao"`
	ComentariosInternos string     `json:"comentarios_internos,omitempty"`
}

// CreateInput reúne os campos informados pelo inspetor ao registrar a visita.
type CreateInput struct {
	Estabelecimento    string
	CNPJ               string
	AtividadePrincipal string
	ClassificacaoRisco Risco
	DataInspecao       time.Time
	Observacoes        string
	PrazoInspetor      *time.Time
	Territorio         string
}

// Patch enumera os campos atualizáveis; nil mantém o valor atual.
type Patch struct {
	Estabelecimento       *string
	CNPJ                  *string
	AtividadePrincipal    *string
	ClassificacaoRisco    *Risco
	DataInspecao          *time.Time
	Observacoes           *string
	PrazoInspetor         *time.Time
	ClearPrazoInspetor    bool
	PrazoCoordenacao      *time.Time
	ClearPrazoCoordenacao bool
	Status                *Status
	Territorio            *string
	ComentariosInternos   *string
}

// touchesCoordination informa se o patch altera campos reservados à coordenação.
func (p Patch) touchesCoordination() bool {
	return p.PrazoCoordenacao != nil || p.ClearPrazoCoordenacao || p.ComentariosInternos != nil
}

func (p Patch) apply(rec *Inspecao) error {
	if p.Status != nil {
		if _, err := ParseStatus(string(*p.Status)); err != nil {
			return err
		}
		if rec.Status == StatusConcluido && *p.Status == StatusPendente {
			return ErrInvalidTransition
		}
		rec.Status = *p.Status
	}
	if p.ClassificacaoRisco != nil {
		if _, err := ParseRisco(string(*p.ClassificacaoRisco)); err != nil {
			return err
		}
		rec.ClassificacaoRisco = *p.ClassificacaoRisco
	}
	if p.Estabelecimento != nil {
		rec.Estabelecimento = *p.Estabelecimento
	}
	if p.CNPJ != nil {
		rec.CNPJ = *p.CNPJ
	}
	if p.AtividadePrincipal != nil {
		rec.AtividadePrincipal = *p.AtividadePrincipal
	}
	if p.DataInspecao != nil {
		rec.DataInspecao = *p.DataInspecao
	}
	if p.Observacoes != nil {
		rec.Observacoes = *p.Observacoes
	}
	if p.ClearPrazoInspetor {
		rec.PrazoInspetor = nil
	} else if p.PrazoInspetor != nil {
		d := *p.PrazoInspetor
		rec.PrazoInspetor = &d
	}
	if p.ClearPrazoCoordenacao {
		rec.PrazoCoordenacao = nil
	} else if p.PrazoCoordenacao != nil {
		d := *p.PrazoCoordenacao
		rec.PrazoCoordenacao = &d
	}
	if p.Territorio != nil {
		rec.Territorio = *p.Territorio
	}
	if p.ComentariosInternos != nil {
		rec.ComentariosInternos = *p.ComentariosInternos
	}
	return nil
}

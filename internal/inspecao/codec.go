package inspecao

import (
	"strconv"
	"strings"
	"time"

	"github.com/gestaozabele/visa/internal/table"
)

// InspecoesFile é o nome da tabela de inspeções dentro do diretório de dados.
const InspecoesFile = "inspecoes.csv"

// Columns segue a ordem histórica da planilha de inspeções.
var Columns = []string{
	"id", "estabelecimento", "cnpj", "atividade_principal",
	"classificacao_risco", "data_inspecao", "observacoes",
	"prazo_inspetor", "prazo_coordenacao", "status",
	"inspetor_id", "territorio", "data_criacao",
	"data_atualizacao", "comentarios_internos",
}

const dateLayout = "2006-01-02"

// layouts aceitos na leitura; planilhas antigas gravavam "2006-01-02 15:04:05.999999".
var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	dateLayout,
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nat") {
		return time.Time{}, false
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDatePtr(raw string) *time.Time {
	t, ok := parseTime(raw)
	if !ok {
		return nil
	}
	return &t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseInspetorID(raw string) int {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.Atoi(raw); err == nil {
		return id
	}
	// colunas numéricas com vazios eram gravadas como float ("3.0")
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func encodeRow(i Inspecao) table.Row {
	return table.Row{
		"id":                   i.ID,
		"estabelecimento":      i.Estabelecimento,
		"cnpj":                 i.CNPJ,
		"atividade_principal":  i.AtividadePrincipal,
		"classificacao_risco":  string(i.ClassificacaoRisco),
		"data_inspecao":        formatDate(i.DataInspecao),
		"observacoes":          i.Observacoes,
		"prazo_inspetor":       formatDatePtr(i.PrazoInspetor),
		"prazo_coordenacao":    formatDatePtr(i.PrazoCoordenacao),
		"status":               string(i.Status),
		"inspetor_id":          strconv.Itoa(i.InspetorID),
		"territorio":           i.Territorio,
		"data_criacao":         formatTimestamp(i.DataCriacao),
		"data_atualizacao":     formatTimestamp(i.DataAtualizacao),
		"comentarios_internos": i.ComentariosInternos,
	}
}

func decodeRow(row table.Row) Inspecao {
	dataInspecao, _ := parseTime(row.Get("data_inspecao"))
	criacao, _ := parseTime(row.Get("data_criacao"))
	atualizacao, _ := parseTime(row.Get("data_atualizacao"))
	return Inspecao{
		ID:                  row.Get("id"),
		Estabelecimento:     row.Get("estabelecimento"),
		CNPJ:                row.Get("cnpj"),
		AtividadePrincipal:  row.Get("atividade_principal"),
		ClassificacaoRisco:  decodeRisco(row.Get("classificacao_risco")),
		DataInspecao:        dataInspecao,
		Observacoes:         row.Get("observacoes"),
		PrazoInspetor:       parseDatePtr(row.Get("prazo_inspetor")),
		PrazoCoordenacao:    parseDatePtr(row.Get("prazo_coordenacao")),
		Status:              decodeStatus(row.Get("status")),
		InspetorID:          parseInspetorID(row.Get("inspetor_id")),
		Territorio:          row.Get("territorio"),
		DataCriacao:         criacao,
		DataAtualizacao:     atualizacao,
		ComentariosInternos: row.Get("comentarios_internos"),
	}
}

// decodeRisco aceita a grafia "médio" gravada pelas planilhas antigas;
// valores irreconhecíveis ficam como estão.
func decodeRisco(raw string) Risco {
	if r, err := ParseRisco(raw); err == nil {
		return r
	}
	return Risco(strings.TrimSpace(raw))
}

func decodeStatus(raw string) Status {
	if st, err := ParseStatus(raw); err == nil {
		return st
	}
	return Status(strings.TrimSpace(raw))
}

func encodeRows(items []Inspecao) []table.Row {
	rows := make([]table.Row, len(items))
	for i, item := range items {
		rows[i] = encodeRow(item)
	}
	return rows
}

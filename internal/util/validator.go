package util

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxDaysWindow = 365

// ValidateEstabelecimento exige nome com 3 a 200 caracteres.
func ValidateEstabelecimento(nome string) error {
	if utf8.RuneCountInString(strings.TrimSpace(nome)) < 3 {
		return errors.New("nome do estabelecimento deve ter pelo menos 3 caracteres")
	}
	if utf8.RuneCountInString(nome) > 200 {
		return errors.New("nome do estabelecimento muito longo (máximo 200 caracteres)")
	}
	return nil
}

// ValidateAtividade exige atividade principal com 3 a 100 caracteres.
func ValidateAtividade(atividade string) error {
	if utf8.RuneCountInString(strings.TrimSpace(atividade)) < 3 {
		return errors.New("atividade principal deve ter pelo menos 3 caracteres")
	}
	if utf8.RuneCountInString(atividade) > 100 {
		return errors.New("atividade principal muito longa (máximo 100 caracteres)")
	}
	return nil
}

// ValidateCNPJ confere 14 dígitos que não sejam todos iguais.
func ValidateCNPJ(raw string) error {
	d := DigitsOnly(raw)
	if d == "" {
		return errors.New("CNPJ é obrigatório")
	}
	if len(d) != 14 {
		return errors.New("CNPJ deve ter 14 dígitos")
	}
	if strings.Count(d, d[:1]) == len(d) {
		return errors.New("CNPJ inválido")
	}
	return nil
}

// ValidateDataInspecao rejeita datas futuras ou com mais de um ano.
func ValidateDataInspecao(data, hoje time.Time) error {
	if data.IsZero() {
		return errors.New("data da inspeção é obrigatória")
	}
	dias := DaysBetween(data, hoje)
	if dias < 0 {
		return errors.New("data da inspeção não pode ser futura")
	}
	if dias > maxDaysWindow {
		return errors.New("data da inspeção muito antiga (máximo 1 ano)")
	}
	return nil
}

// ValidatePrazo aceita prazo ausente; quando presente, deve cair até um ano após a inspeção.
func ValidatePrazo(prazo *time.Time, dataInspecao time.Time) error {
	if prazo == nil || prazo.IsZero() {
		return nil
	}
	dias := DaysBetween(dataInspecao, *prazo)
	if dias <= 0 {
		return errors.New("prazo deve ser posterior à data da inspeção")
	}
	if dias > maxDaysWindow {
		return errors.New("prazo muito distante (máximo 1 ano)")
	}
	return nil
}

// ValidateObservacoes exige achados com 10 a 2000 caracteres.
func ValidateObservacoes(texto string) error {
	if utf8.RuneCountInString(strings.TrimSpace(texto)) < 10 {
		return errors.New("observações devem ter pelo menos 10 caracteres")
	}
	if utf8.RuneCountInString(texto) > 2000 {
		return errors.New("observações muito longas (máximo 2000 caracteres)")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

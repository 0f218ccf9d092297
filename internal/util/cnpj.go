package util

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// DigitsOnly remove tudo que não for dígito.
func DigitsOnly(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// FormatCNPJ pontua um CNPJ de 14 dígitos como NN.NNN.NNN/NNNN-NN.
// Entradas com outra quantidade de dígitos são devolvidas sem alteração.
func FormatCNPJ(raw string) string {
	d := DigitsOnly(raw)
	if len(d) != 14 {
		return raw
	}
	var b strings.Builder
	b.Grow(18)
	b.WriteString(d[:2])
	b.WriteByte('.')
	b.WriteString(d[2:5])
	b.WriteByte('.')
	b.WriteString(d[5:8])
	b.WriteByte('/')
	b.WriteString(d[8:12])
	b.WriteByte('-')
	b.WriteString(d[12:])
	return b.String()
}

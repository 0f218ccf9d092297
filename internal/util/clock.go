package util

import "time"

// Clock permite injetar o relógio em regras que dependem de "hoje".
type Clock func() time.Time

// Now é o relógio padrão dos serviços.
func Now() time.Time {
	return time.Now()
}

// DateOnly devolve a data civil de t (meia-noite UTC), descartando hora e fuso.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween conta dias civis de a até b (negativo quando b vem antes).
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

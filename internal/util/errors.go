package util

import "strings"

// ValidationError agrega todas as mensagens de campos inválidos de uma operação.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "dados inválidos: " + strings.Join(e.Messages, "; ")
}

// Add registra a falha quando err não é nil.
func (e *ValidationError) Add(err error) {
	if err != nil {
		e.Messages = append(e.Messages, err.Error())
	}
}

// Err devolve o próprio erro somente se houver mensagens.
func (e *ValidationError) Err() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}

package util

import "github.com/google/uuid"

// NewID gera identificador opaco (UUID v4) para registros de inspeção.
func NewID() string {
	return uuid.NewString()
}

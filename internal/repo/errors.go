package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicateUsername impede dois usuários com o mesmo login.
	ErrDuplicateUsername = errors.New("usuário já cadastrado")
	// ErrInvalidPerfil sinaliza perfil fora de inspetor/coordenador/gerencia.
	ErrInvalidPerfil = errors.New("perfil inválido")
)

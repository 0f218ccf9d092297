package repo

import "strings"

// Perfil define o nível de acesso de um usuário.
type Perfil string

const (
	PerfilInspetor    Perfil = "inspetor"
	PerfilCoordenador Perfil = "coordenador"
	PerfilGerencia    Perfil = "gerencia"
)

// ParsePerfil normaliza e valida o perfil informado.
func ParsePerfil(raw string) (Perfil, error) {
	p := Perfil(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PerfilInspetor, PerfilCoordenador, PerfilGerencia:
		return p, nil
	}
	return "", ErrInvalidPerfil
}

// Usuario representa inspetor, coordenador ou gerente com credencial local.
type Usuario struct {
	ID         int
	Username   string
	SenhaHash  string
	Nome       string
	Perfil     Perfil
	Territorio string
	Ativo      bool
}

// CreateUsuarioInput descreve novo usuário; a senha já chega com hash.
type CreateUsuarioInput struct {
	Username   string
	SenhaHash  string
	Nome       string
	Perfil     Perfil
	Territorio string
}

package auth

import (
	"errors"

	"github.com/gestaozabele/visa/internal/repo"
)

var (
	// ErrAccessDenied indica ausência de sessão autenticada.
	ErrAccessDenied = errors.New("acesso negado. faça login para continuar")
	// ErrForbidden indica perfil sem permissão para a operação.
	ErrForbidden = errors.New("você não tem permissão para acessar este recurso")
)

// Identity é o usuário autenticado, sem o hash de senha.
type Identity struct {
	ID         int         `json:"id"`
	Username   string      `json:"username"`
	Nome       string      `json:"nome"`
	Perfil     repo.Perfil `json:"perfil"`
	Territorio string      `json:"territorio"`
}

// IdentityFromUsuario descarta a credencial do registro de usuário.
func IdentityFromUsuario(u repo.Usuario) Identity {
	return Identity{
		ID:         u.ID,
		Username:   u.Username,
		Nome:       u.Nome,
		Perfil:     u.Perfil,
		Territorio: u.Territorio,
	}
}

// Session guarda no máximo uma identidade. Cada chamador mantém a sua; não há
// sessão global no processo.
type Session struct {
	user *Identity
}

// NewSession cria sessão vazia.
func NewSession() *Session {
	return &Session{}
}

// SessionFor cria sessão já autenticada, usada quando a identidade vem de um token.
func SessionFor(id Identity) *Session {
	return &Session{user: &id}
}

// CurrentUser devolve a identidade da sessão, se houver.
func (s *Session) CurrentUser() (Identity, bool) {
	if s == nil || s.user == nil {
		return Identity{}, false
	}
	return *s.user, true
}

// Logout limpa a identidade incondicionalmente.
func (s *Session) Logout() {
	s.user = nil
}

// Require falha com ErrAccessDenied sem sessão e com ErrForbidden quando o
// perfil atual não está entre os permitidos (lista vazia aceita qualquer perfil).
func (s *Session) Require(allowed ...repo.Perfil) error {
	user, ok := s.CurrentUser()
	if !ok {
		return ErrAccessDenied
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, p := range allowed {
		if user.Perfil == p {
			return nil
		}
	}
	return ErrForbidden
}

// HasPermission compara o perfil atual com o exigido pela hierarquia.
func (s *Session) HasPermission(required repo.Perfil) bool {
	user, ok := s.CurrentUser()
	if !ok {
		return false
	}
	return AtLeast(user.Perfil, required)
}

func (s *Session) begin(id Identity) {
	s.user = &id
}

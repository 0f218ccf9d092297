package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/repo"
	"github.com/gestaozabele/visa/internal/util"
)

type usuarioRepository interface {
	List(ctx context.Context) ([]repo.Usuario, error)
	Create(ctx context.Context, input repo.CreateUsuarioInput) (repo.Usuario, error)
	Deactivate(ctx context.Context, id int) error
}

// UsuarioService centraliza a administração de contas usada pela CLI.
type UsuarioService struct {
	repo   usuarioRepository
	hash   repo.HashFunc
	logger zerolog.Logger
}

// NewUsuarioService cria nova instância do serviço.
func NewUsuarioService(r *repo.UsuarioStore, logger zerolog.Logger) *UsuarioService {
	return &UsuarioService{repo: r, hash: auth.Hash, logger: logger}
}

// ListUsers retorna os usuários cadastrados.
func (s *UsuarioService) ListUsers(ctx context.Context) ([]repo.Usuario, error) {
	return s.repo.List(ctx)
}

// NovoUsuario reúne os dados informados para criar uma conta.
type NovoUsuario struct {
	Username   string
	Senha      string
	Nome       string
	Perfil     string
	Territorio string
}

// CreateUser valida os campos, gera o hash da senha e grava a conta ativa.
func (s *UsuarioService) CreateUser(ctx context.Context, in NovoUsuario) (repo.Usuario, error) {
	var verr util.ValidationError
	verr.Add(util.RequireString(in.Username, "login"))
	verr.Add(util.RequireString(in.Nome, "nome"))
	verr.Add(util.ValidatePassword(strings.TrimSpace(in.Senha)))
	perfil, err := repo.ParsePerfil(in.Perfil)
	verr.Add(err)
	if err := verr.Err(); err != nil {
		return repo.Usuario{}, err
	}

	hashed, err := s.hash(strings.TrimSpace(in.Senha))
	if err != nil {
		return repo.Usuario{}, err
	}
	user, err := s.repo.Create(ctx, repo.CreateUsuarioInput{
		Username:   strings.TrimSpace(in.Username),
		SenhaHash:  hashed,
		Nome:       strings.TrimSpace(in.Nome),
		Perfil:     perfil,
		Territorio: strings.TrimSpace(in.Territorio),
	})
	if err != nil {
		return repo.Usuario{}, err
	}
	s.logger.Info().Int("usuario_id", user.ID).Str("perfil", string(user.Perfil)).Msg("usuário criado")
	return user, nil
}

// DeactivateUser desativa a conta; o histórico de inspeções continua apontando para ela.
func (s *UsuarioService) DeactivateUser(ctx context.Context, id int) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int("usuario_id", id).Msg("usuário desativado")
	return nil
}

package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/visa/internal/repo"
)

// ErrInvalidCredentials cobre login inexistente, duplicado, inativo ou senha errada.
var ErrInvalidCredentials = errors.New("credenciais inválidas")

// CredentialStore localiza contas pelo login.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) ([]repo.Usuario, error)
}

// Gate autentica contra o CredentialStore e popula sessões.
type Gate struct {
	store  CredentialStore
	logger zerolog.Logger
}

// NewGate cria o portão de autenticação.
func NewGate(store CredentialStore, logger zerolog.Logger) *Gate {
	return &Gate{store: store, logger: logger}
}

// Authenticate exige exatamente uma conta ativa com o login e senha conferindo.
// Falhas de credencial são sempre ErrInvalidCredentials; erros de leitura da
// tabela são devolvidos como estão.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	matches, err := g.store.FindByUsername(ctx, username)
	if err != nil {
		return Identity{}, err
	}
	if len(matches) != 1 {
		g.logger.Warn().Int("matches", len(matches)).Msg("autenticação: login não encontrado ou ambíguo")
		return Identity{}, ErrInvalidCredentials
	}
	user := matches[0]
	if !user.Ativo {
		g.logger.Warn().Int("usuario_id", user.ID).Msg("autenticação: conta inativa")
		return Identity{}, ErrInvalidCredentials
	}
	if !Verify(password, user.SenhaHash) {
		g.logger.Warn().Int("usuario_id", user.ID).Msg("autenticação: senha inválida")
		return Identity{}, ErrInvalidCredentials
	}
	return IdentityFromUsuario(user), nil
}

// Login autentica e, só em caso de sucesso, grava a identidade na sessão.
func (g *Gate) Login(ctx context.Context, sess *Session, username, password string) error {
	id, err := g.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}
	sess.begin(id)
	return nil
}

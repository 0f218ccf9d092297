package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/repo"
	"github.com/gestaozabele/visa/internal/util"
)

// ErrRefreshInvalid indica refresh token inválido, expirado ou revogado.
var ErrRefreshInvalid = auth.ErrInvalidRefresh

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type userLookup interface {
	GetByID(ctx context.Context, id int) (repo.Usuario, error)
}

// AuthService emite e renova sessões sobre o Gate.
type AuthService struct {
	gate       *auth.Gate
	users      userLookup
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
	now        util.Clock
	logger     zerolog.Logger
}

// NewAuthService cria o serviço; rdb nil usa armazenamento em memória para refresh tokens.
func NewAuthService(gate *auth.Gate, users *repo.UsuarioStore, rdb *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration, logger zerolog.Logger) *AuthService {
	var cmd redisCommander = NewMemoryCommander()
	if rdb != nil {
		cmd = rdb
	}
	return &AuthService{
		gate: gate, users: users, redis: cmd, jwt: jwtMgr,
		refreshTTL: refreshTTL, now: util.Now, logger: logger,
	}
}

// JWT expõe o gerenciador de tokens para o middleware.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult é o par de tokens entregue ao cliente.
type LoginResult struct {
	AccessToken   string        `json:"access_token"`
	RefreshToken  string        `json:"refresh_token"`
	ExpiresIn     int           `json:"expires_in"`
	RefreshExpiry time.Time     `json:"refresh_expira_em"`
	Usuario       auth.Identity `json:"usuario"`
}

// Login autentica e abre sessão.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	id, err := s.gate.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	res, err := s.issue(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("usuario_id", id.ID).Str("perfil", string(id.Perfil)).Msg("login efetuado")
	return res, nil
}

// Refresh troca o refresh token por um novo par; o anterior é revogado.
// Contas desativadas depois do login não renovam.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}
	key := auth.RefreshRedisKey(auth.HashRefreshToken(rawToken))
	val, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	userID, err := strconv.Atoi(val)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}
	if !user.Ativo {
		return nil, ErrRefreshInvalid
	}

	res, err := s.issue(ctx, auth.IdentityFromUsuario(user))
	if err != nil {
		return nil, err
	}
	if err := s.redis.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return res, nil
}

// Logout revoga o refresh token atual; token vazio é ignorado.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	key := auth.RefreshRedisKey(auth.HashRefreshToken(rawToken))
	if err := s.redis.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Me recarrega a identidade a partir da tabela de usuários.
func (s *AuthService) Me(ctx context.Context, userID int) (auth.Identity, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return auth.Identity{}, err
	}
	if !user.Ativo {
		return auth.Identity{}, auth.ErrAccessDenied
	}
	return auth.IdentityFromUsuario(user), nil
}

func (s *AuthService) issue(ctx context.Context, id auth.Identity) (*LoginResult, error) {
	token, err := s.jwt.GenerateAccessToken(id)
	if err != nil {
		return nil, err
	}
	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	key := auth.RefreshRedisKey(refreshHash)
	if err := s.redis.Set(ctx, key, strconv.Itoa(id.ID), s.refreshTTL).Err(); err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		ExpiresIn:     int(s.jwt.AccessTTL().Seconds()),
		RefreshExpiry: s.now().Add(s.refreshTTL),
		Usuario:       id,
	}, nil
}

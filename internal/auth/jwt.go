package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gestaozabele/visa/internal/repo"
)

const audience = "visa"

// Claims carrega a identidade da sessão dentro do JWT de acesso.
type Claims struct {
	Username   string `json:"username"`
	Nome       string `json:"nome"`
	Perfil     string `json:"perfil"`
	Territorio string `json:"territorio,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

// AccessTTL expõe a validade do token de acesso.
func (m *JWTManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// GenerateAccessToken assina (HS256) um token para a identidade.
func (m *JWTManager) GenerateAccessToken(id Identity) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Username:   id.Username,
		Nome:       id.Nome,
		Perfil:     string(id.Perfil),
		Territorio: id.Territorio,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(id.ID),
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseIdentity verifica assinatura, expiração e audiência e reconstrói a identidade.
func (m *JWTManager) ParseIdentity(tokenString string) (Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("token inválido")
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return Identity{}, errors.New("subject inválido")
	}
	perfil, err := repo.ParsePerfil(claims.Perfil)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		ID:         userID,
		Username:   claims.Username,
		Nome:       claims.Nome,
		Perfil:     perfil,
		Territorio: claims.Territorio,
	}, nil
}

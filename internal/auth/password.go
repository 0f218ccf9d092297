package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera um hash Argon2id salgado (inclui os parâmetros dentro do próprio hash).
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify compara a senha com o hash em tempo constante. Aceita também os hashes
// bcrypt ($2a$, $2b$, $2y$) das tabelas antigas. Hash malformado conta como
// senha incorreta.
func Verify(password, encodedHash string) bool {
	if IsLegacyHash(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}
	ok, err := argon2id.ComparePasswordAndHash(password, encodedHash)
	return err == nil && ok
}

// IsLegacyHash identifica hashes bcrypt herdados.
func IsLegacyHash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2")
}

package auth

import "github.com/gestaozabele/visa/internal/repo"

// hierarquia total: inspetor < coordenador < gerencia
var hierarchy = map[repo.Perfil]int{
	repo.PerfilInspetor:    1,
	repo.PerfilCoordenador: 2,
	repo.PerfilGerencia:    3,
}

// Rank devolve o nível do perfil; perfis desconhecidos valem 0.
func Rank(p repo.Perfil) int {
	return hierarchy[p]
}

// AtLeast informa se current alcança o nível de required.
func AtLeast(current, required repo.Perfil) bool {
	return Rank(current) >= Rank(required)
}

// SeesAll indica perfis com visão de todas as inspeções; perfil desconhecido
// ou vazio fica restrito como inspetor.
func SeesAll(p repo.Perfil) bool {
	return Rank(p) >= Rank(repo.PerfilCoordenador)
}

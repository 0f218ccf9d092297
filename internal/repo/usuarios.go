package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gestaozabele/visa/internal/table"
)

// UsuariosFile é o nome da tabela de credenciais dentro do diretório de dados.
const UsuariosFile = "usuarios.csv"

var usuarioColumns = []string{"id", "username", "password", "nome", "perfil", "territorio", "ativo"}

// HashFunc gera o hash persistível de uma senha.
type HashFunc func(password string) (string, error)

type seedAccount struct {
	username, senha, nome string
	perfil                Perfil
	territorio            string
}

var seedAccounts = []seedAccount{
	{"admin", "admin123", "Administrador", PerfilGerencia, "Todos"},
	{"coord1", "coord123", "Coordenador Teste", PerfilCoordenador, "Centro"},
	{"insp1", "insp123", "Inspetor Teste", PerfilInspetor, "Norte"},
}

// UsuarioStore guarda credenciais em tabela CSV, recarregada a cada chamada.
type UsuarioStore struct {
	path string
}

// NewUsuarioStore aponta para <dataDir>/usuarios.csv.
func NewUsuarioStore(dataDir string) *UsuarioStore {
	return &UsuarioStore{path: filepath.Join(dataDir, UsuariosFile)}
}

// Path expõe o caminho da tabela.
func (s *UsuarioStore) Path() string {
	return s.path
}

// EnsureSeed cria a tabela com as três contas iniciais quando ela não existe.
func (s *UsuarioStore) EnsureSeed(ctx context.Context, hash HashFunc) (bool, error) {
	created, err := table.Ensure(s.path, usuarioColumns)
	if err != nil || !created {
		return false, err
	}

	rows := make([]table.Row, 0, len(seedAccounts))
	for i, acc := range seedAccounts {
		h, err := hash(acc.senha)
		if err != nil {
			return false, fmt.Errorf("seed %s: %w", acc.username, err)
		}
		rows = append(rows, encodeUsuario(Usuario{
			ID:         i + 1,
			Username:   acc.username,
			SenhaHash:  h,
			Nome:       acc.nome,
			Perfil:     acc.perfil,
			Territorio: acc.territorio,
			Ativo:      true,
		}))
	}
	if err := table.Save(s.path, usuarioColumns, rows); err != nil {
		return false, err
	}
	return true, nil
}

// List devolve todos os usuários; tabela ausente equivale a nenhum usuário.
func (s *UsuarioStore) List(ctx context.Context) ([]Usuario, error) {
	rows, err := table.Load(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	users := make([]Usuario, 0, len(rows))
	for _, row := range rows {
		u, err := decodeUsuario(row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// FindByUsername devolve todas as contas com o login informado (ativas ou não).
func (s *UsuarioStore) FindByUsername(ctx context.Context, username string) ([]Usuario, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []Usuario
	for _, u := range users {
		if u.Username == username {
			matches = append(matches, u)
		}
	}
	return matches, nil
}

// GetByID busca usuário pelo identificador numérico.
func (s *UsuarioStore) GetByID(ctx context.Context, id int) (Usuario, error) {
	users, err := s.List(ctx)
	if err != nil {
		return Usuario{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return Usuario{}, ErrNotFound
}

// Names mapeia id para nome de exibição.
func (s *UsuarioStore) Names(ctx context.Context) (map[int]string, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Nome
	}
	return names, nil
}

// Create acrescenta usuário com o próximo id livre.
func (s *UsuarioStore) Create(ctx context.Context, input CreateUsuarioInput) (Usuario, error) {
	var created Usuario
	err := table.WithLock(s.path, func() error {
		users, err := s.List(ctx)
		if err != nil {
			return err
		}
		nextID := 1
		for _, u := range users {
			if u.Username == input.Username {
				return ErrDuplicateUsername
			}
			if u.ID >= nextID {
				nextID = u.ID + 1
			}
		}
		created = Usuario{
			ID:         nextID,
			Username:   input.Username,
			SenhaHash:  input.SenhaHash,
			Nome:       input.Nome,
			Perfil:     input.Perfil,
			Territorio: input.Territorio,
			Ativo:      true,
		}
		return s.save(append(users, created))
	})
	if err != nil {
		return Usuario{}, err
	}
	return created, nil
}

// Deactivate marca a conta como inativa; nenhuma conta é removida.
func (s *UsuarioStore) Deactivate(ctx context.Context, id int) error {
	return table.WithLock(s.path, func() error {
		users, err := s.List(ctx)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].ID == id {
				users[i].Ativo = false
				return s.save(users)
			}
		}
		return ErrNotFound
	})
}

func (s *UsuarioStore) save(users []Usuario) error {
	rows := make([]table.Row, len(users))
	for i, u := range users {
		rows[i] = encodeUsuario(u)
	}
	return table.Save(s.path, usuarioColumns, rows)
}

func encodeUsuario(u Usuario) table.Row {
	return table.Row{
		"id":         strconv.Itoa(u.ID),
		"username":   u.Username,
		"password":   u.SenhaHash,
		"nome":       u.Nome,
		"perfil":     string(u.Perfil),
		"territorio": u.Territorio,
		"ativo":      strconv.FormatBool(u.Ativo),
	}
}

// decodePerfil normaliza caixa e espaços; valor desconhecido é mantido e não
// concede acesso.
func decodePerfil(raw string) Perfil {
	if p, err := ParsePerfil(raw); err == nil {
		return p
	}
	return Perfil(strings.ToLower(strings.TrimSpace(raw)))
}

func decodeUsuario(row table.Row) (Usuario, error) {
	id, err := strconv.Atoi(strings.TrimSpace(row.Get("id")))
	if err != nil {
		return Usuario{}, fmt.Errorf("usuário com id inválido %q: %w", row.Get("id"), err)
	}
	// tabelas legadas gravam True/False
	ativo, _ := strconv.ParseBool(strings.TrimSpace(row.Get("ativo")))
	return Usuario{
		ID:         id,
		Username:   row.Get("username"),
		SenhaHash:  row.Get("password"),
		Nome:       row.Get("nome"),
		Perfil:     decodePerfil(row.Get("perfil")),
		Territorio: row.Get("territorio"),
		Ativo:      ativo,
	}, nil
}

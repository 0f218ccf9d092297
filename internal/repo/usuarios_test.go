package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeHash(password string) (string, error) {
	return "hash:" + password, nil
}

func newSeededStore(t *testing.T) *UsuarioStore {
	t.Helper()
	store := NewUsuarioStore(t.TempDir())
	created, err := store.EnsureSeed(context.Background(), fakeHash)
	require.NoError(t, err)
	require.True(t, created)
	return store
}

func TestEnsureSeedCreatesThreeAccounts(t *testing.T) {
	store := newSeededStore(t)

	users, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)

	admin := users[0]
	assert.Equal(t, 1, admin.ID)
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, PerfilGerencia, admin.Perfil)
	assert.Equal(t, "Todos", admin.Territorio)
	assert.Equal(t, "hash:admin123", admin.SenhaHash)
	assert.True(t, admin.Ativo)

	assert.Equal(t, PerfilCoordenador, users[1].Perfil)
	assert.Equal(t, PerfilInspetor, users[2].Perfil)
}

func TestEnsureSeedDoesNotOverwrite(t *testing.T) {
	store := newSeededStore(t)
	require.NoError(t, store.Deactivate(context.Background(), 3))

	created, err := store.EnsureSeed(context.Background(), fakeHash)
	require.NoError(t, err)
	assert.False(t, created)

	u, err := store.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, u.Ativo)
}

func TestCreateAssignsNextIDAndRejectsDuplicates(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	u, err := store.Create(ctx, CreateUsuarioInput{
		Username: "insp2", SenhaHash: "h", Nome: "Inspetora Dois", Perfil: PerfilInspetor, Territorio: "Sul",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, u.ID)
	assert.True(t, u.Ativo)

	_, err = store.Create(ctx, CreateUsuarioInput{Username: "insp2", Perfil: PerfilInspetor})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	names, err := store.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Inspetora Dois", names[4])
}

func TestFindByUsernameReturnsAllMatches(t *testing.T) {
	store := NewUsuarioStore(t.TempDir())
	legacy := "id,username,password,nome,perfil,territorio,ativo\n" +
		"1,ana,h1,Ana,inspetor,Norte,True\n" +
		"2,ana,h2,Ana B,inspetor,Sul,False\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(legacy), 0o644))

	matches, err := store.FindByUsername(context.Background(), "ana")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Ativo)
	assert.False(t, matches[1].Ativo)

	none, err := store.FindByUsername(context.Background(), "ninguem")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeactivateUnknownUser(t *testing.T) {
	store := newSeededStore(t)
	assert.ErrorIs(t, store.Deactivate(context.Background(), 99), ErrNotFound)

	_, err := store.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParsePerfil(t *testing.T) {
	p, err := ParsePerfil(" Coordenador ")
	require.NoError(t, err)
	assert.Equal(t, PerfilCoordenador, p)

	_, err = ParsePerfil("admin")
	assert.ErrorIs(t, err, ErrInvalidPerfil)
}

func TestLegacyPerfilIsNormalized(t *testing.T) {
	dir := t.TempDir()
	legacy := "id,username,password,nome,perfil,territorio,ativo\n" +
		"1,chefe,hash:x,Chefe, Coordenador ,Centro,True\n" +
		"2,sem,hash:y,Sem Perfil,,Norte,True\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, UsuariosFile), []byte(legacy), 0o644))

	store := NewUsuarioStore(dir)
	chefe, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, PerfilCoordenador, chefe.Perfil)
	assert.True(t, chefe.Ativo)

	sem, err := store.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, Perfil(""), sem.Perfil)
}

package inspecao

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/visa/internal/db"
	"github.com/gestaozabele/visa/internal/util"
)

func TestPgRepository(t *testing.T) {
	dsn := os.Getenv("VISA_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("VISA_TEST_DB_DSN não definido")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE inspecoes`)
	require.NoError(t, err)

	r := NewPgRepository(pool)
	rec := sample()[0]
	rec.ID = util.NewID()
	rec.DataCriacao = hoje
	rec.DataAtualizacao = hoje
	require.NoError(t, r.Insert(ctx, rec))

	items, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, rec.Estabelecimento, items[0].Estabelecimento)
	assert.Nil(t, items[0].PrazoCoordenacao)

	st := StatusConcluido
	updated, err := r.Update(ctx, rec.ID, func(i *Inspecao) error { return Patch{Status: &st}.apply(i) })
	require.NoError(t, err)
	assert.Equal(t, StatusConcluido, updated.Status)

	pend := StatusPendente
	_, err = r.Update(ctx, rec.ID, func(i *Inspecao) error { return Patch{Status: &pend}.apply(i) })
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = r.Update(ctx, "nao-existe", func(*Inspecao) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

package inspecao

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRepositoryCreatesHeaderOnlyFile(t *testing.T) {
	dir := t.TempDir()
	r, err := NewCSVRepository(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, InspecoesFile), r.Path())

	items, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCSVRepositoryRoundTrip(t *testing.T) {
	r, err := NewCSVRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	rec := sample()[0]
	rec.Observacoes = "Linha com \"aspas\", vírgula\ne quebra"
	rec.DataCriacao = hoje
	rec.DataAtualizacao = hoje
	require.NoError(t, r.Insert(ctx, rec))

	items, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, rec.Observacoes, got.Observacoes)
	assert.Equal(t, rec.InspetorID, got.InspetorID)
	assert.Equal(t, RiscoMedio, got.ClassificacaoRisco)
	assert.Nil(t, got.PrazoCoordenacao)
	assert.True(t, hoje.Equal(got.DataCriacao))
}

func TestCSVRepositoryReadsLegacyRows(t *testing.T) {
	dir := t.TempDir()
	legacy := "id,estabelecimento,cnpj,atividade_principal,classificacao_risco,data_inspecao,observacoes," +
		"prazo_inspetor,prazo_coordenacao,status,inspetor_id,territorio,data_criacao,data_atualizacao\n" +
		"x1,Mercado Sol,12345678000190,Mercado,alto,2025-03-01,Observação longa o bastante," +
		"2025-03-05,,pendente,3.0,Norte,2025-03-01 10:00:00.123456,2025-03-01 10:00:00.123456\n" +
		"x2,Padaria Lua,11222333000181,Padaria,Médio,2025-03-02,Observação longa o bastante," +
		",,Pendente,3,Norte,2025-03-02 09:00:00,2025-03-02 09:00:00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, InspecoesFile), []byte(legacy), 0o644))

	r, err := NewCSVRepository(dir)
	require.NoError(t, err)
	items, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].InspetorID)
	assert.Equal(t, RiscoAlto, items[0].ClassificacaoRisco)
	assert.Equal(t, RiscoMedio, items[1].ClassificacaoRisco)
	assert.Equal(t, StatusPendente, items[1].Status)
	assert.Nil(t, items[1].PrazoInspetor)
	assert.Empty(t, items[0].ComentariosInternos)
	require.NotNil(t, items[0].PrazoInspetor)
	assert.Equal(t, 5, items[0].PrazoInspetor.Day())
	assert.False(t, items[0].DataCriacao.IsZero())
}

func TestLegacyAccentedRiskCountsAsMedio(t *testing.T) {
	dir := t.TempDir()
	legacy := "id,estabelecimento,cnpj,atividade_principal,classificacao_risco,data_inspecao,observacoes," +
		"prazo_inspetor,prazo_coordenacao,status,inspetor_id,territorio,data_criacao,data_atualizacao\n" +
		"x1,Padaria Lua,11222333000181,Padaria,médio,2025-03-02,Observação longa o bastante," +
		",,pendente,3,Norte,2025-03-02 09:00:00,2025-03-02 09:00:00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, InspecoesFile), []byte(legacy), 0o644))

	r, err := NewCSVRepository(dir)
	require.NoError(t, err)
	svc := NewService(r, nil, Config{Clock: func() time.Time { return hoje }}, zerolog.Nop())
	ctx := context.Background()

	found, err := svc.Search(ctx, coordenador, Filter{Risco: RiscoMedio})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	ind, err := svc.Indicators(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[Risco]int{RiscoBaixo: 0, RiscoMedio: 1, RiscoAlto: 0}, ind.PorRisco)
}

func TestCSVRepositoryConcurrentInserts(t *testing.T) {
	r, err := NewCSVRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := sample()[0]
			rec.ID = string(rune('a' + i))
			assert.NoError(t, r.Insert(ctx, rec))
		}(i)
	}
	wg.Wait()

	items, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestCSVRepositoryUpdateUnknownID(t *testing.T) {
	r, err := NewCSVRepository(t.TempDir())
	require.NoError(t, err)
	_, err = r.Update(context.Background(), "nada", func(*Inspecao) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

package inspecao

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/repo"
	"github.com/gestaozabele/visa/internal/util"
)

var hoje = time.Date(2025, 3, 10, 15, 30, 0, 0, time.Local)

func dia(offset int) *time.Time {
	d := time.Date(2025, 3, 10+offset, 0, 0, 0, 0, time.Local)
	return &d
}

var (
	inspetorA   = auth.Identity{ID: 3, Username: "insp1", Nome: "Inspetor 1", Perfil: repo.PerfilInspetor, Territorio: "Norte"}
	inspetorB   = auth.Identity{ID: 4, Username: "insp2", Nome: "Inspetor 2", Perfil: repo.PerfilInspetor, Territorio: "Sul"}
	coordenador = auth.Identity{ID: 2, Username: "coord1", Nome: "Coordenador", Perfil: repo.PerfilCoordenador, Territorio: "Centro"}
)

func newTestService(t *testing.T) (*Service, *CSVRepository) {
	t.Helper()
	dir := t.TempDir()
	r, err := NewCSVRepository(dir)
	require.NoError(t, err)
	exp := NewExporter(dir, nil, zerolog.Nop())
	exp.now = func() time.Time { return hoje }
	svc := NewService(r, exp, Config{Clock: func() time.Time { return hoje }}, zerolog.Nop())
	return svc, r
}

func validInput() CreateInput {
	return CreateInput{
		Estabelecimento:    "Restaurante Bom Sabor",
		CNPJ:               "12.345.678/0001-90",
		AtividadePrincipal: "Restaurante",
		ClassificacaoRisco: RiscoMedio,
		DataInspecao:       *dia(-2),
		Observacoes:        "Cozinha limpa, armazenamento adequado.",
		PrazoInspetor:      dia(5),
	}
}

func seed(t *testing.T, svc *Service, owner int, prazo *time.Time) Inspecao {
	t.Helper()
	in := validInput()
	in.PrazoInspetor = prazo
	rec, err := svc.Create(context.Background(), in, owner)
	require.NoError(t, err)
	return rec
}

func TestCreatePersistsPendingRecord(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, validInput(), 3)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusPendente, rec.Status)
	assert.Nil(t, rec.PrazoCoordenacao)
	assert.Equal(t, 3, rec.InspetorID)
	assert.Equal(t, hoje, rec.DataCriacao)
	assert.Equal(t, rec.DataCriacao, rec.DataAtualizacao)

	items, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, rec.ID, items[0].ID)
	assert.Equal(t, "Restaurante Bom Sabor", items[0].Estabelecimento)
	assert.Equal(t, util.DateOnly(*dia(5)), util.DateOnly(*items[0].PrazoInspetor))
}

func TestRegisterCollectsEveryValidationMessage(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	in := CreateInput{
		Estabelecimento: "AB",
		CNPJ:            "111",
		DataInspecao:    *dia(1),
		Observacoes:     "curto",
	}
	_, err := svc.Register(ctx, in, inspetorA)
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 6)

	items, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRegisterNormalizesAndInheritsTerritory(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.Register(context.Background(), validInput(), inspetorA)
	require.NoError(t, err)
	assert.Equal(t, "12345678000190", rec.CNPJ)
	assert.Equal(t, "Norte", rec.Territorio)
	assert.Equal(t, inspetorA.ID, rec.InspetorID)
}

func TestListForUserScopesInspectors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		seed(t, svc, inspetorA.ID, nil)
	}
	for i := 0; i < 2; i++ {
		seed(t, svc, inspetorB.ID, nil)
	}

	mine, err := svc.ListForUser(ctx, inspetorA.ID, repo.PerfilInspetor)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	all, err := svc.ListForUser(ctx, coordenador.ID, repo.PerfilCoordenador)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	gerencia, err := svc.ListForUser(ctx, 1, repo.PerfilGerencia)
	require.NoError(t, err)
	assert.Len(t, gerencia, 5)
}

func TestOverdueAndUpcoming(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	vencida := seed(t, svc, 3, dia(-1))
	proxima := seed(t, svc, 3, dia(2))
	seed(t, svc, 3, dia(10))
	seed(t, svc, 3, nil)
	concluida := seed(t, svc, 3, dia(-5))
	st := StatusConcluido
	_, err := svc.Update(ctx, concluida.ID, Patch{Status: &st})
	require.NoError(t, err)

	over, err := svc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, over, 1)
	assert.Equal(t, vencida.ID, over[0].ID)

	up, err := svc.Upcoming(ctx, 3)
	require.NoError(t, err)
	require.Len(t, up, 1)
	assert.Equal(t, proxima.ID, up[0].ID)
}

func TestCoordinationDeadlineAlsoCountsAsOverdue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec := seed(t, svc, 3, dia(4))
	_, err := svc.UpdateAs(ctx, coordenador, rec.ID, Patch{PrazoCoordenacao: dia(-1)})
	require.NoError(t, err)

	over, err := svc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, over, 1)

	up, err := svc.Upcoming(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, up)
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.Statistics(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, Estatisticas{}, empty)

	seed(t, svc, inspetorA.ID, dia(-1))
	seed(t, svc, inspetorA.ID, nil)
	done := seed(t, svc, inspetorB.ID, nil)
	_, err = svc.Conclude(ctx, coordenador, done.ID)
	require.NoError(t, err)
	seed(t, svc, inspetorB.ID, dia(-3))

	all, err := svc.Statistics(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)
	assert.Equal(t, 3, all.Pendentes)
	assert.Equal(t, 1, all.Concluidas)
	assert.Equal(t, 2, all.Vencidas)
	assert.InDelta(t, 25.0, all.PercentualCumprimento, 0.001)

	mine, err := svc.Statistics(ctx, ScopeOf(inspetorA))
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Total)
	assert.Equal(t, 1, mine.Vencidas)
	assert.Zero(t, mine.PercentualCumprimento)
}

func TestUpdateAsEnforcesProfileRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec := seed(t, svc, inspetorA.ID, dia(4))

	_, err := svc.UpdateAs(ctx, inspetorB, rec.ID, Patch{Observacoes: strPtr("Outra observação qualquer")})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.UpdateAs(ctx, inspetorA, rec.ID, Patch{PrazoCoordenacao: dia(6)})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.UpdateAs(ctx, inspetorA, rec.ID, Patch{ComentariosInternos: strPtr("x")})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	updated, err := svc.UpdateAs(ctx, inspetorA, rec.ID, Patch{Observacoes: strPtr("Retorno agendado para vistoria.")})
	require.NoError(t, err)
	assert.Equal(t, "Retorno agendado para vistoria.", updated.Observacoes)

	_, err = svc.UpdateAs(ctx, inspetorA, rec.ID, Patch{Estabelecimento: strPtr("X")})
	var verr *util.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateAs(ctx, coordenador, "nao-existe", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)

	// a nova data não pode ultrapassar o prazo já gravado
	_, err = svc.UpdateAs(ctx, inspetorA, rec.ID, Patch{DataInspecao: dia(0)})
	require.NoError(t, err)
	_, err = svc.UpdateAs(ctx, coordenador, rec.ID, Patch{PrazoCoordenacao: dia(2)})
	require.NoError(t, err)

	rec2 := seed(t, svc, inspetorA.ID, dia(-1))
	_, err = svc.UpdateAs(ctx, inspetorA, rec2.ID, Patch{DataInspecao: dia(0)})
	require.ErrorAs(t, err, &verr)
	stored, err := svc.Get(ctx, inspetorA, rec2.ID)
	require.NoError(t, err)
	assert.Equal(t, dia(-2).Format("2006-01-02"), stored.DataInspecao.Format("2006-01-02"))

	_, err = svc.UpdateAs(ctx, coordenador, rec.ID, Patch{DataInspecao: dia(-1)})
	require.NoError(t, err)
	_, err = svc.UpdateAs(ctx, coordenador, rec.ID, Patch{DataInspecao: dia(0), ClearPrazoInspetor: true})
	require.NoError(t, err)

	rec3 := seed(t, svc, inspetorA.ID, nil)
	_, err = svc.UpdateAs(ctx, coordenador, rec3.ID, Patch{PrazoCoordenacao: dia(-1)})
	require.NoError(t, err)
	_, err = svc.UpdateAs(ctx, coordenador, rec3.ID, Patch{DataInspecao: dia(-1)})
	assert.ErrorAs(t, err, &verr)
}

func TestConcludeIsOneWay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec := seed(t, svc, inspetorA.ID, dia(-1))

	done, err := svc.Conclude(ctx, inspetorA, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConcluido, done.Status)

	pend := StatusPendente
	_, err = svc.UpdateAs(ctx, coordenador, rec.ID, Patch{Status: &pend})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	over, err := svc.Overdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, over)
}

func TestInternalCommentsHiddenFromInspectors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec := seed(t, svc, inspetorA.ID, nil)

	_, err := svc.UpdateAs(ctx, coordenador, rec.ID, Patch{ComentariosInternos: strPtr("Reincidente")})
	require.NoError(t, err)

	got, err := svc.Get(ctx, coordenador, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reincidente", got.ComentariosInternos)

	got, err = svc.Get(ctx, inspetorA, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ComentariosInternos)

	_, err = svc.Get(ctx, inspetorB, rec.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.Get(ctx, coordenador, "nao-existe")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed(t, svc, inspetorA.ID, dia(-1))
	seed(t, svc, inspetorA.ID, dia(1))
	in := validInput()
	in.Estabelecimento = "Padaria Central"
	in.CNPJ = "98765432000111"
	in.ClassificacaoRisco = RiscoAlto
	in.PrazoInspetor = nil
	_, err := svc.Create(ctx, in, inspetorB.ID)
	require.NoError(t, err)

	got, err := svc.Search(ctx, coordenador, Filter{Situacao: SituacaoVencido})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, coordenador, Filter{Situacao: SituacaoProximo})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, coordenador, Filter{Busca: "padaria"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, RiscoAlto, got[0].ClassificacaoRisco)

	got, err = svc.Search(ctx, coordenador, Filter{Busca: "98.765.432"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, coordenador, Filter{Risco: RiscoMedio})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.Search(ctx, inspetorB, Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, coordenador, Filter{De: dia(-1)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Search(ctx, coordenador, Filter{De: dia(-2), Ate: dia(-2)})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSituacao(t *testing.T) {
	base := Inspecao{Status: StatusPendente}
	assert.Equal(t, SituacaoPendente, base.Situacao(hoje, 3))

	withPrazo := base
	withPrazo.PrazoInspetor = dia(0)
	assert.Equal(t, SituacaoProximo, withPrazo.Situacao(hoje, 3))

	withPrazo.PrazoInspetor = dia(-1)
	assert.Equal(t, SituacaoVencido, withPrazo.Situacao(hoje, 3))

	withPrazo.Status = StatusConcluido
	assert.Equal(t, SituacaoConcluido, withPrazo.Situacao(hoje, 3))
}

func strPtr(s string) *string { return &s }

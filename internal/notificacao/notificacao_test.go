package notificacao

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/visa/internal/inspecao"
	"github.com/gestaozabele/visa/internal/repo"
)

type stubSource struct {
	vencidas []inspecao.Inspecao
	proximas []inspecao.Inspecao
	dias     int
	err      error
}

func (s *stubSource) Overdue(context.Context) ([]inspecao.Inspecao, error) {
	return s.vencidas, s.err
}

func (s *stubSource) Upcoming(_ context.Context, dias int) ([]inspecao.Inspecao, error) {
	s.dias = dias
	return s.proximas, s.err
}

func day(d int) *time.Time {
	t := time.Date(2025, 3, d, 0, 0, 0, 0, time.Local)
	return &t
}

func fixture() *stubSource {
	return &stubSource{
		vencidas: []inspecao.Inspecao{
			{ID: "v1", Estabelecimento: "Bar do Zé", InspetorID: 3, PrazoInspetor: day(8)},
			{ID: "v2", Estabelecimento: "Mercado Sol", InspetorID: 4, PrazoCoordenacao: day(5)},
		},
		proximas: []inspecao.Inspecao{
			{ID: "p1", Estabelecimento: "Padaria Central", InspetorID: 3, PrazoInspetor: day(12), PrazoCoordenacao: day(11)},
		},
	}
}

func TestNotificationsForCoordinationAreSortedByDate(t *testing.T) {
	src := fixture()
	d := NewDeriver(src, 0)

	list, err := d.Notifications(context.Background(), 2, repo.PerfilCoordenador)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, inspecao.DefaultJanelaDias, src.dias)

	assert.Equal(t, "v2", list[0].InspecaoID)
	assert.Equal(t, "v1", list[1].InspecaoID)
	assert.Equal(t, "p1", list[2].InspecaoID)

	assert.Equal(t, TipoVencida, list[0].Tipo)
	assert.Equal(t, "Inspeção Vencida", list[0].Titulo)
	assert.Equal(t, "Estabelecimento: Mercado Sol", list[0].Mensagem)
	assert.Equal(t, inspecao.UrgenciaAlta, list[0].Urgencia)

	assert.Equal(t, TipoProximaVencimento, list[2].Tipo)
	assert.Equal(t, "Prazo Próximo", list[2].Titulo)
	assert.Equal(t, inspecao.UrgenciaMedia, list[2].Urgencia)
	// prazo do inspetor prevalece sobre o da coordenação
	assert.Equal(t, 12, list[2].Data.Day())
}

func TestNotificationsForInspectorOnlyOwn(t *testing.T) {
	d := NewDeriver(fixture(), 3)

	list, err := d.Notifications(context.Background(), 3, repo.PerfilInspetor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		assert.Contains(t, []string{"v1", "p1"}, n.InspecaoID)
	}
}

func TestNotificationsUnknownPerfilOnlyOwn(t *testing.T) {
	d := NewDeriver(fixture(), 3)

	list, err := d.Notifications(context.Background(), 3, "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = d.Notifications(context.Background(), 99, "visitante")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationsMissingDateSortsFirst(t *testing.T) {
	src := fixture()
	src.vencidas = append(src.vencidas, inspecao.Inspecao{ID: "sem-data", InspetorID: 3})

	list, err := NewDeriver(src, 3).Notifications(context.Background(), 1, repo.PerfilGerencia)
	require.NoError(t, err)
	assert.Equal(t, "sem-data", list[0].InspecaoID)
	assert.Nil(t, list[0].Data)
}

func TestNotificationsPropagatesSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("falha de leitura")}
	_, err := NewDeriver(src, 3).Notifications(context.Background(), 1, repo.PerfilGerencia)
	assert.Error(t, err)
}

func TestSummaryAndTop(t *testing.T) {
	list, err := NewDeriver(fixture(), 3).Notifications(context.Background(), 1, repo.PerfilGerencia)
	require.NoError(t, err)

	r := Summary(list)
	assert.Equal(t, Resumo{Vencidas: 2, Proximas: 1}, r)
	assert.Equal(t, 3, r.Total())

	assert.Len(t, Top(list, 2), 2)
	assert.Len(t, Top(list, 5), 3)
	assert.Empty(t, Top(list, 0))
	assert.Equal(t, Resumo{}, Summary(nil))
}

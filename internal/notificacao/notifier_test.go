package notificacao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestMessage(t *testing.T) {
	empty := DigestMessage(nil, 5)
	assert.Equal(t, "info", empty.Severity)
	assert.Equal(t, "Nenhum alerta no momento.", empty.Text)

	list := []Notificacao{
		{Tipo: TipoVencida, Titulo: "Inspeção Vencida", Estabelecimento: "Bar do Zé", Data: day(8)},
		{Tipo: TipoProximaVencimento, Titulo: "Prazo Próximo", Estabelecimento: "Padaria Central"},
	}
	msg := DigestMessage(list, 1)
	assert.Equal(t, "critical", msg.Severity)
	assert.Contains(t, msg.Text, "1 inspeção(ões) vencida(s), 1 próxima(s)")
	assert.Contains(t, msg.Text, "Bar do Zé (prazo 08/03/2025)")
	assert.NotContains(t, msg.Text, "Padaria Central")
	assert.Contains(t, msg.Text, "e mais 1 alerta(s)")

	assert.Equal(t, "warning", DigestMessage(list[1:], 5).Severity)
}

func TestSlackNotifierPostsFormattedText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	require.NotNil(t, n)
	err := n.Notify(context.Background(), AlertMessage{Title: "VISA", Text: "2 vencidas", Severity: "critical"})
	require.NoError(t, err)
	assert.Equal(t, ":rotating_light: *VISA*\n2 vencidas", got["text"])
}

func TestSlackNotifierErrors(t *testing.T) {
	assert.Nil(t, NewSlackNotifier(""))

	var disabled *SlackNotifier
	assert.ErrorIs(t, disabled.Notify(context.Background(), AlertMessage{}), ErrNotifierDisabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	assert.Error(t, NewSlackNotifier(srv.URL).Notify(context.Background(), AlertMessage{Text: "x"}))
}

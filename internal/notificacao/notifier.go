package notificacao

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotifierDisabled indica webhook ausente.
var ErrNotifierDisabled = errors.New("notificador slack não configurado")

// Notifier envia o resumo de alertas para canais externos.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
}

type AlertMessage struct {
	Title    string
	Text     string
	Severity string
}

// DigestMessage resume os alertas em uma única mensagem.
func DigestMessage(list []Notificacao, limite int) AlertMessage {
	r := Summary(list)
	msg := AlertMessage{Title: "VISA: alertas de prazo", Severity: "info"}
	switch {
	case r.Vencidas > 0:
		msg.Severity = "critical"
	case r.Proximas > 0:
		msg.Severity = "warning"
	}
	if r.Total() == 0 {
		msg.Text = "Nenhum alerta no momento."
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d inspeção(ões) vencida(s), %d próxima(s) do vencimento", r.Vencidas, r.Proximas)
	for _, n := range Top(list, limite) {
		data := "data não definida"
		if n.Data != nil {
			data = n.Data.Format("02/01/2006")
		}
		fmt.Fprintf(&b, "\n• %s: %s (prazo %s)", n.Titulo, n.Estabelecimento, data)
	}
	if extra := len(list) - limite; limite >= 0 && extra > 0 {
		fmt.Fprintf(&b, "\n... e mais %d alerta(s)", extra)
	}
	msg.Text = b.String()
	return msg
}

type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier devolve nil quando a URL está vazia.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	if webhookURL == "" {
		return nil
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, msg AlertMessage) error {
	if s == nil || s.webhookURL == "" {
		return ErrNotifierDisabled
	}

	body, err := json.Marshal(map[string]any{"text": formatSlackMessage(msg)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack respondeu %d", resp.StatusCode)
	}
	return nil
}

func formatSlackMessage(msg AlertMessage) string {
	emoji := ":information_source:"
	switch msg.Severity {
	case "warning":
		emoji = ":warning:"
	case "critical":
		emoji = ":rotating_light:"
	}
	if msg.Title != "" {
		return emoji + " *" + msg.Title + "*\n" + msg.Text
	}
	return emoji + " " + msg.Text
}

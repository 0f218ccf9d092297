package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/visa/internal/notificacao"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("STORAGE_DRIVER", "csv")
	t.Setenv("JWT_SECRET", "segredo-de-teste-com-mais-de-32-caracteres")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SLACK_WEBHOOK_URL", "")
	t.Setenv("EXPORT_BUCKET_ENDPOINT", "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUsuariosListarShowsSeedAccounts(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "usuarios", "listar")
	require.NoError(t, err)
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "coord1")
	assert.Contains(t, out, "insp1")
}

func TestUsuariosCriarAndDesativar(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "usuarios", "criar", "--login", "insp9", "--senha", "Senha123", "--nome", "Inspetora Nova", "--territorio", "Leste")
	require.NoError(t, err)
	assert.Contains(t, out, "insp9")

	_, err = execute(t, "usuarios", "criar", "--login", "insp9", "--senha", "Senha123", "--nome", "Outra")
	assert.Error(t, err)

	out, err = execute(t, "usuarios", "desativar", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "desativado")

	_, err = execute(t, "usuarios", "desativar", "abc")
	assert.Error(t, err)
}

func TestAlertasWithoutInspections(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "alertas")
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum alerta")

	_, err = execute(t, "alertas", "--enviar")
	assert.ErrorIs(t, err, notificacao.ErrNotifierDisabled)
}

func TestEstatisticasAndExportarEmpty(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "estatisticas")
	require.NoError(t, err)
	assert.Contains(t, out, "total: 0")

	_, err = execute(t, "exportar", "--formato", "pdf")
	assert.Error(t, err)

	_, err = execute(t, "exportar")
	assert.Error(t, err)
}

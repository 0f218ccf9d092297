package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS inspecoes (
	id                   TEXT PRIMARY KEY,
	estabelecimento      TEXT NOT NULL,
	cnpj                 TEXT NOT NULL,
	atividade_principal  TEXT NOT NULL,
	classificacao_risco  TEXT NOT NULL,
	data_inspecao        DATE NOT NULL,
	observacoes          TEXT NOT NULL,
	prazo_inspetor       DATE,
	prazo_coordenacao    DATE,
	status               TEXT NOT NULL DEFAULT 'pendente',
	inspetor_id          INTEGER NOT NULL,
	territorio           TEXT NOT NULL DEFAULT '',
	data_criacao         TIMESTAMPTZ NOT NULL,
	data_atualizacao     TIMESTAMPTZ NOT NULL,
	comentarios_internos TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS inspecoes_inspetor_idx ON inspecoes (inspetor_id);
`

// Migrate cria a tabela de inspeções quando ausente.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

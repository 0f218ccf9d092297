package inspecao

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/visa/internal/db"
)

const selectColumns = `id, estabelecimento, cnpj, atividade_principal, classificacao_risco,
	data_inspecao, observacoes, prazo_inspetor, prazo_coordenacao, status,
	inspetor_id, territorio, data_criacao, data_atualizacao, comentarios_internos`

// PgRepository guarda inspeções em Postgres; cada alteração roda em transação
// com a linha travada (SELECT ... FOR UPDATE).
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository cria repositório sobre o pool informado.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) List(ctx context.Context) ([]Inspecao, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM inspecoes ORDER BY data_criacao`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer rows.Close()

	var items []Inspecao
	for rows.Next() {
		rec, err := scanInspecao(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return items, nil
}

func (r *PgRepository) Insert(ctx context.Context, rec Inspecao) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO inspecoes (`+selectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`, values(rec)...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (r *PgRepository) Update(ctx context.Context, id string, fn func(*Inspecao) error) (Inspecao, error) {
	var (
		updated Inspecao
		fnErr   error
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM inspecoes WHERE id = $1 FOR UPDATE`, id)
		rec, err := scanInspecao(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}

		if fnErr = fn(&rec); fnErr != nil {
			return fnErr
		}

		_, err = tx.Exec(ctx, `UPDATE inspecoes SET
			estabelecimento=$2, cnpj=$3, atividade_principal=$4, classificacao_risco=$5,
			data_inspecao=$6, observacoes=$7, prazo_inspetor=$8, prazo_coordenacao=$9,
			status=$10, inspetor_id=$11, territorio=$12, data_criacao=$13,
			data_atualizacao=$14, comentarios_internos=$15
			WHERE id=$1`, values(rec)...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		updated = rec
		return nil
	})
	if err != nil && fnErr == nil && !errors.Is(err, ErrPersistence) && !errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return updated, err
}

func values(rec Inspecao) []any {
	return []any{
		rec.ID, rec.Estabelecimento, rec.CNPJ, rec.AtividadePrincipal, string(rec.ClassificacaoRisco),
		rec.DataInspecao, rec.Observacoes, rec.PrazoInspetor, rec.PrazoCoordenacao, string(rec.Status),
		rec.InspetorID, rec.Territorio, rec.DataCriacao, rec.DataAtualizacao, rec.ComentariosInternos,
	}
}

func scanInspecao(row pgx.Row) (Inspecao, error) {
	var (
		rec    Inspecao
		risco  string
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.Estabelecimento, &rec.CNPJ, &rec.AtividadePrincipal, &risco,
		&rec.DataInspecao, &rec.Observacoes, &rec.PrazoInspetor, &rec.PrazoCoordenacao, &status,
		&rec.InspetorID, &rec.Territorio, &rec.DataCriacao, &rec.DataAtualizacao, &rec.ComentariosInternos,
	)
	rec.ClassificacaoRisco = decodeRisco(risco)
	rec.Status = decodeStatus(status)
	return rec, err
}

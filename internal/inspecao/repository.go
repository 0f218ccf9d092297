package inspecao

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gestaozabele/visa/internal/table"
)

// Repository persiste a tabela de inspeções. Update executa fn sobre a linha
// encontrada e só grava quando fn não falha.
type Repository interface {
	List(ctx context.Context) ([]Inspecao, error)
	Insert(ctx context.Context, rec Inspecao) error
	Update(ctx context.Context, id string, fn func(*Inspecao) error) (Inspecao, error)
}

// CSVRepository recarrega o arquivo inteiro em cada operação e o substitui em
// cada gravação, sob trava exclusiva de arquivo.
type CSVRepository struct {
	path string
}

// NewCSVRepository garante <dataDir>/inspecoes.csv com cabeçalho.
func NewCSVRepository(dataDir string) (*CSVRepository, error) {
	path := filepath.Join(dataDir, InspecoesFile)
	if _, err := table.Ensure(path, Columns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return &CSVRepository{path: path}, nil
}

// Path expõe o caminho da tabela.
func (r *CSVRepository) Path() string {
	return r.path
}

func (r *CSVRepository) List(ctx context.Context) ([]Inspecao, error) {
	rows, err := table.Load(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	items := make([]Inspecao, len(rows))
	for i, row := range rows {
		items[i] = decodeRow(row)
	}
	return items, nil
}

func (r *CSVRepository) Insert(ctx context.Context, rec Inspecao) error {
	return r.withLock(func() error {
		items, err := r.List(ctx)
		if err != nil {
			return err
		}
		return r.save(append(items, rec))
	})
}

func (r *CSVRepository) Update(ctx context.Context, id string, fn func(*Inspecao) error) (Inspecao, error) {
	var updated Inspecao
	err := r.withLock(func() error {
		items, err := r.List(ctx)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if err := fn(&items[i]); err != nil {
				return err
			}
			updated = items[i]
			return r.save(items)
		}
		return ErrNotFound
	})
	return updated, err
}

func (r *CSVRepository) withLock(fn func() error) error {
	err := table.WithLock(r.path, fn)
	if errors.Is(err, table.ErrLock) {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return err
}

func (r *CSVRepository) save(items []Inspecao) error {
	if err := table.Save(r.path, Columns, encodeRows(items)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

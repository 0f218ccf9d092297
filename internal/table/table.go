// Package table persiste tabelas planas (CSV com cabeçalho) substituindo o
// arquivo inteiro a cada gravação.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Row mapeia coluna para valor textual.
type Row map[string]string

// Get devolve o valor da coluna ou "" quando ausente.
func (r Row) Get(col string) string {
	return r[col]
}

// Ensure cria o arquivo contendo apenas o cabeçalho quando ele ainda não existe.
// Devolve true se o arquivo foi criado.
func Ensure(path string, header []string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("table: stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("table: criar diretório: %w", err)
	}
	if err := Save(path, header, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Load lê todas as linhas do arquivo, indexadas pelo nome da coluna do cabeçalho.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: abrir %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("table: cabeçalho de %s: %w", path, err)
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: ler %s: %w", path, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save grava header e rows em arquivo temporário no mesmo diretório e o renomeia
// sobre path. Uma falha em qualquer etapa preserva o conteúdo anterior.
func Save(path string, header []string, rows []Row) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("table: arquivo temporário: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, header, rows); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("table: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("table: fechar: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("table: substituir %s: %w", path, err)
	}
	return nil
}

// Write serializa header e rows em w no formato CSV.
func Write(w io.Writer, header []string, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("table: cabeçalho: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("table: linha: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

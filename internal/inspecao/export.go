package inspecao

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/gestaozabele/visa/internal/storage"
	"github.com/gestaozabele/visa/internal/table"
	"github.com/gestaozabele/visa/internal/util"
)

// Format de exportação.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Inspecoes"

// ParseFormat assume csv quando vazio.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", ErrInvalidFormat
}

func (f Format) contentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ExportResult aponta o arquivo gerado e, se publicado, sua URL.
type ExportResult struct {
	Arquivo   string `json:"arquivo"`
	Registros int    `json:"registros"`
	URL       string `json:"url,omitempty"`
}

// Exporter grava relatórios em dir e opcionalmente os publica.
type Exporter struct {
	dir      string
	uploader storage.Uploader
	now      util.Clock
	logger   zerolog.Logger
}

// NewExporter cria o exportador; uploader nil desativa a publicação.
func NewExporter(dir string, uploader storage.Uploader, logger zerolog.Logger) *Exporter {
	return &Exporter{dir: dir, uploader: uploader, now: util.Now, logger: logger}
}

// FileName segue export_inspecoes_YYYYMMDD_HHMMSS.<ext>.
func (e *Exporter) FileName(format Format) string {
	return fmt.Sprintf("export_inspecoes_%s.%s", e.now().Format("20060102_150405"), format)
}

// Export gera o arquivo no formato pedido com o mesmo layout de colunas da tabela.
func (e *Exporter) Export(ctx context.Context, items []Inspecao, format Format) (ExportResult, error) {
	if format == "" {
		format = FormatCSV
	}
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatCSV:
		body, err = encodeCSV(items)
	case FormatXLSX:
		body, err = encodeXLSX(items)
	default:
		return ExportResult{}, ErrInvalidFormat
	}
	if err != nil {
		return ExportResult{}, fmt.Errorf("exportar inspeções: %w", err)
	}

	name, err := e.create(e.FileName(format), body)
	if err != nil {
		return ExportResult{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	path := filepath.Join(e.dir, name)
	res := ExportResult{Arquivo: path, Registros: len(items)}

	if e.uploader != nil {
		up, err := e.uploader.Upload(ctx, storage.UploadInput{Key: name, Body: body, ContentType: format.contentType()})
		if err != nil {
			// o arquivo local continua válido
			e.logger.Warn().Err(err).Str("arquivo", name).Msg("exportação: upload falhou")
		} else {
			res.URL = up.URL
		}
	}
	e.logger.Info().Str("arquivo", path).Int("registros", len(items)).Msg("exportação gerada")
	return res, nil
}

// maxExportSuffix limita as tentativas de nome dentro do mesmo segundo.
const maxExportSuffix = 100

// create grava body sem sobrescrever: nomes repetidos ganham sufixo _2, _3...
func (e *Exporter) create(name string, body []byte) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; n <= maxExportSuffix; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		f, err := os.OpenFile(filepath.Join(e.dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(body); err != nil {
			f.Close()
			return "", err
		}
		return candidate, f.Close()
	}
	return "", fmt.Errorf("nomes esgotados para %s", name)
}

func encodeCSV(items []Inspecao) ([]byte, error) {
	var buf bytes.Buffer
	if err := table.Write(&buf, Columns, encodeRows(items)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXLSX(items []Inspecao) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	for i, col := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return nil, err
		}
	}
	for r, row := range encodeRows(items) {
		for c, col := range Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, row.Get(col)); err != nil {
				return nil, err
			}
		}
	}
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "G", "G", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

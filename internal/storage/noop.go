package storage

import (
	"context"
	"errors"
)

// ErrNotConfigured indica que nenhum bucket de exportação foi configurado.
var ErrNotConfigured = errors.New("storage: bucket de exportação não configurado")

// NoopUploader é usado quando EXPORT_BUCKET_* não está definido.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, UploadInput) (*UploadResult, error) {
	return nil, ErrNotConfigured
}

package storage

import "context"

// UploadInput descreve um arquivo a ser publicado no bucket de exportações.
type UploadInput struct {
	Key         string
	Body        []byte
	ContentType string
}

// UploadResult traz a URL pública do objeto gravado.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader publica relatórios exportados.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

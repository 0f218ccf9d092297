package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig aponta para um endpoint S3 compatível (MinIO, R2, S3).
type MinioConfig struct {
	Endpoint     string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	PublicDomain string
}

func (cfg MinioConfig) validate() error {
	switch {
	case strings.TrimSpace(cfg.Endpoint) == "":
		return errors.New("storage: endpoint ausente")
	case strings.TrimSpace(cfg.Bucket) == "":
		return errors.New("storage: bucket ausente")
	case strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "":
		return errors.New("storage: credenciais ausentes")
	}
	return nil
}

// MinioUploader grava exportações via minio-go.
type MinioUploader struct {
	cfg    MinioConfig
	client *minio.Client
}

// NewMinioUploader cria o cliente; o bucket é criado no primeiro upload se não existir.
func NewMinioUploader(cfg MinioConfig) (*MinioUploader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: cliente minio: %w", err)
	}
	return &MinioUploader{cfg: cfg, client: client}, nil
}

func (u *MinioUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	key := strings.TrimLeft(strings.TrimSpace(input.Key), "/")
	if key == "" {
		return nil, errors.New("storage: chave do objeto obrigatória")
	}
	if len(input.Body) == 0 {
		return nil, errors.New("storage: corpo vazio")
	}
	if err := u.ensureBucket(ctx); err != nil {
		return nil, err
	}

	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := u.client.PutObject(ctx, u.cfg.Bucket, key, bytes.NewReader(input.Body), int64(len(input.Body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("storage: upload falhou: %w", err)
	}
	return &UploadResult{URL: u.publicURL(key), ETag: info.ETag}, nil
}

func (u *MinioUploader) ensureBucket(ctx context.Context) error {
	found, err := u.client.BucketExists(ctx, u.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("storage: bucket %s: %w", u.cfg.Bucket, err)
	}
	if found {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("storage: criar bucket %s: %w", u.cfg.Bucket, err)
	}
	return nil
}

func (u *MinioUploader) publicURL(key string) string {
	if d := strings.TrimSpace(u.cfg.PublicDomain); d != "" {
		return strings.TrimRight(d, "/") + "/" + key
	}
	scheme := "http"
	if u.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, u.client.EndpointURL().Host, u.cfg.Bucket, key)
}

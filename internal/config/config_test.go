package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, DriverCSV, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 3, cfg.JanelaDias)
	assert.Equal(t, "csv", cfg.ExportFormat)
	assert.False(t, cfg.ExportBucket.Enabled())
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://visa@localhost/visa")
	t.Setenv("ALLOW_ORIGINS", "http://a.local, ,http://b.local")
	t.Setenv("UPCOMING_WINDOW_DAYS", "5")
	t.Setenv("EXPORT_FORMAT", "XLSX")
	t.Setenv("EXPORT_BUCKET_ENDPOINT", "localhost:9000")
	t.Setenv("EXPORT_BUCKET_NAME", "exportacoes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowOrigins)
	assert.Equal(t, 5, cfg.JanelaDias)
	assert.Equal(t, "xlsx", cfg.ExportFormat)
	assert.True(t, cfg.ExportBucket.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"segredo curto":    {"JWT_SECRET": "curto"},
		"porta":            {"JWT_SECRET": secret, "PORT": "abc"},
		"driver":           {"JWT_SECRET": secret, "STORAGE_DRIVER": "sqlite"},
		"postgres sem dsn": {"JWT_SECRET": secret, "STORAGE_DRIVER": "postgres", "DB_DSN": ""},
		"janela":           {"JWT_SECRET": secret, "UPCOMING_WINDOW_DAYS": "0"},
		"formato":          {"JWT_SECRET": secret, "EXPORT_FORMAT": "pdf"},
		"ttl":              {"JWT_SECRET": secret, "JWT_ACCESS_TTL": "quinze"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

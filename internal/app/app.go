// Package app monta as dependências compartilhadas pela API e pela CLI.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/config"
	"github.com/gestaozabele/visa/internal/db"
	"github.com/gestaozabele/visa/internal/inspecao"
	"github.com/gestaozabele/visa/internal/notificacao"
	"github.com/gestaozabele/visa/internal/repo"
	"github.com/gestaozabele/visa/internal/service"
	"github.com/gestaozabele/visa/internal/storage"
)

// App reúne os serviços prontos para uso.
type App struct {
	Config       *config.Config
	Usuarios     *repo.UsuarioStore
	Inspecoes    *inspecao.Service
	Notificacoes *notificacao.Deriver
	Auth         *service.AuthService
	Contas       *service.UsuarioService
	// Notifier é nil quando SLACK_WEBHOOK_URL não está definido.
	Notifier notificacao.Notifier

	pool  *pgxpool.Pool
	redis *redis.Client
}

// New prepara o diretório de dados, semeia usuários e escolhe o driver de inspeções.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("diretório de dados: %w", err)
	}

	a := &App{Config: cfg, Usuarios: repo.NewUsuarioStore(cfg.DataDir)}
	seeded, err := a.Usuarios.EnsureSeed(ctx, auth.Hash)
	if err != nil {
		return nil, fmt.Errorf("usuários: %w", err)
	}
	if seeded {
		logger.Warn().Str("arquivo", a.Usuarios.Path()).Msg("usuários padrão criados; troque as senhas")
	}

	inspecoesRepo, err := a.inspecoesRepository(ctx, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var uploader storage.Uploader
	if cfg.ExportBucket.Enabled() {
		b := cfg.ExportBucket
		uploader, err = storage.NewMinioUploader(storage.MinioConfig{
			Endpoint:     b.Endpoint,
			Bucket:       b.Bucket,
			AccessKey:    b.AccessKey,
			SecretKey:    b.SecretKey,
			UseSSL:       b.UseSSL,
			PublicDomain: b.PublicDomain,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("bucket de exportação: %w", err)
		}
	}
	inspLog := component(logger, "inspecao")
	exporter := inspecao.NewExporter(cfg.DataDir, uploader, inspLog)

	a.Inspecoes = inspecao.NewService(inspecoesRepo, exporter, inspecao.Config{JanelaDias: cfg.JanelaDias}, inspLog)
	a.Notificacoes = notificacao.NewDeriver(a.Inspecoes, cfg.JanelaDias)
	a.Contas = service.NewUsuarioService(a.Usuarios, component(logger, "usuarios"))

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis parse: %w", err)
		}
		a.redis = redis.NewClient(opts)
	} else {
		logger.Info().Msg("REDIS_URL vazio; sessões de refresh ficam em memória")
	}

	authLog := component(logger, "auth")
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	a.Auth = service.NewAuthService(auth.NewGate(a.Usuarios, authLog), a.Usuarios, a.redis, jwtManager, cfg.JWTRefreshTTL, authLog)

	if n := notificacao.NewSlackNotifier(cfg.SlackWebhookURL); n != nil {
		a.Notifier = n
	}
	return a, nil
}

func component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

func (a *App) inspecoesRepository(ctx context.Context, logger zerolog.Logger) (inspecao.Repository, error) {
	if a.Config.StorageDriver != config.DriverPostgres {
		r, err := inspecao.NewCSVRepository(a.Config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("tabela de inspeções: %w", err)
		}
		logger.Info().Str("arquivo", r.Path()).Msg("inspeções em CSV")
		return r, nil
	}

	pool, err := db.NewPool(ctx, a.Config.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	a.pool = pool
	if err := db.Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("migração: %w", err)
	}
	logger.Info().Msg("inspeções em Postgres")
	return inspecao.NewPgRepository(pool), nil
}

// Close libera conexões abertas.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

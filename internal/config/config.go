package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de persistência das inspeções.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DataDir         string
	StorageDriver   string
	DBDSN           string
	RedisURL        string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	JWTSecret       string
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	JanelaDias      int
	ExportFormat    string
	ExportBucket    BucketConfig
	SlackWebhookURL string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// BucketConfig aponta para o armazenamento de objetos das exportações.
type BucketConfig struct {
	Endpoint     string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	PublicDomain string
}

// Enabled indica se há bucket configurado.
func (b BucketConfig) Enabled() bool {
	return b.Endpoint != "" && b.Bucket != ""
}

// Load carrega .env e variáveis de ambiente, aplicando defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DataDir = strings.TrimSpace(getEnv("DATA_DIR", "./data"))
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", DriverCSV)))
	switch cfg.StorageDriver {
	case DriverCSV:
	case DriverPostgres:
		cfg.DBDSN = getEnv("DB_DSN", "")
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN obrigatório com STORAGE_DRIVER=postgres")
		}
	default:
		return nil, errors.New("STORAGE_DRIVER deve ser csv ou postgres")
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTRefreshTTL, err = parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}

	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", ""))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 1, Burst: 5}

	janela, err := strconv.Atoi(getEnv("UPCOMING_WINDOW_DAYS", "3"))
	if err != nil || janela <= 0 {
		return nil, errors.New("UPCOMING_WINDOW_DAYS inválido")
	}
	cfg.JanelaDias = janela

	cfg.ExportFormat = strings.ToLower(strings.TrimSpace(getEnv("EXPORT_FORMAT", "csv")))
	if cfg.ExportFormat != "csv" && cfg.ExportFormat != "xlsx" {
		return nil, errors.New("EXPORT_FORMAT deve ser csv ou xlsx")
	}

	cfg.ExportBucket = BucketConfig{
		Endpoint:     strings.TrimSpace(getEnv("EXPORT_BUCKET_ENDPOINT", "")),
		Bucket:       strings.TrimSpace(getEnv("EXPORT_BUCKET_NAME", "")),
		AccessKey:    strings.TrimSpace(getEnv("EXPORT_BUCKET_ACCESS_KEY", "")),
		SecretKey:    strings.TrimSpace(getEnv("EXPORT_BUCKET_SECRET_KEY", "")),
		UseSSL:       getEnv("EXPORT_BUCKET_USE_SSL", "false") == "true",
		PublicDomain: strings.TrimSpace(getEnv("EXPORT_BUCKET_PUBLIC_DOMAIN", "")),
	}

	cfg.SlackWebhookURL = strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", ""))

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// StorageDriverMemory хранит данные в памяти процесса.
	StorageDriverMemory = "memory"
	// StorageDriverPostgres хранит данные в PostgreSQL.
	StorageDriverPostgres = "postgres"
)

const envPrefix = "SF_"

// Config описывает настройки запуска сервиса.
type Config struct {
	GRPCAddr    string
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers       []string
	KafkaClientID      string
	KafkaTopic         string
	KafkaConsumerGroup string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	IdempotencyTTL              time.Duration
	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int
	IdempotencyCleanupMaxBatch  int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	PlaceRateLimit  float64
	PlaceRateBurst  int
	RestockOnCancel bool

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:                    ":50051",
		HTTPAddr:                    ":8080",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		KafkaClientID:               "storefront",
		KafkaTopic:                  "storefront.order.events",
		KafkaConsumerGroup:          "storefront-cache-invalidation",
		ProductCacheTTL:             5 * time.Minute,
		IdempotencyTTL:              24 * time.Hour,
		IdempotencyCleanupInterval:  time.Minute,
		IdempotencyCleanupBatchSize: 500,
		IdempotencyCleanupMaxBatch:  20,
		OutboxPollInterval:          time.Second,
		OutboxBatchSize:             100,
		OutboxMaxAttempts:           3,
		OutboxRetryDelay:            100 * time.Millisecond,
		PlaceRateLimit:              200,
		PlaceRateBurst:              50,
		RequestTimeout:              10 * time.Second,
		ShutdownTimeout:             5 * time.Second,
		LogLevel:                    "info",
		LogFormat:                   "text",
	}
}

// LoadConfig собирает конфигурацию из DefaultConfig, .env-файлов и переменных SF_*.
// Переменные окружения процесса важнее значений из файлов.
// Без аргументов читается ./.env, если он есть.
func LoadConfig(envFiles ...string) (Config, error) {
	fileEnv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			return v, true
		}
		v, ok := fileEnv[envPrefix+name]
		return v, ok
	}
	return configFromLookup(lookup)
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return map[string]string{}, nil
		}
		files = []string{".env"}
	}
	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("read env files: %w", err)
	}
	return values, nil
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) str(name string, dst *string) {
	if v, ok := r.lookup(name); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func (r *envReader) list(name string, dst *[]string) {
	var raw string
	r.str(name, &raw)
	if raw == "" {
		return
	}
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	*dst = out
}

func (r *envReader) integer(name string, dst *int) {
	var raw string
	r.str(name, &raw)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
		return
	}
	*dst = v
}

func (r *envReader) float(name string, dst *float64) {
	var raw string
	r.str(name, &raw)
	if raw == "" {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
		return
	}
	*dst = v
}

func (r *envReader) boolean(name string, dst *bool) {
	var raw string
	r.str(name, &raw)
	if raw == "" {
		return
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
		return
	}
	*dst = v
}

func (r *envReader) duration(name string, dst *time.Duration) {
	var raw string
	r.str(name, &raw)
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
		return
	}
	*dst = v
}

func configFromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	r := &envReader{lookup: lookup}

	r.str("GRPC_ADDR", &cfg.GRPCAddr)
	r.str("HTTP_ADDR", &cfg.HTTPAddr)
	r.str("METRICS_ADDR", &cfg.MetricsAddr)

	r.str("STORAGE_DRIVER", &cfg.StorageDriver)
	r.str("POSTGRES_DSN", &cfg.PostgresDSN)
	r.boolean("POSTGRES_AUTO_MIGRATE", &cfg.PostgresAutoMigrate)

	r.list("KAFKA_BROKERS", &cfg.KafkaBrokers)
	r.str("KAFKA_CLIENT_ID", &cfg.KafkaClientID)
	r.str("KAFKA_TOPIC", &cfg.KafkaTopic)
	r.str("KAFKA_CONSUMER_GROUP", &cfg.KafkaConsumerGroup)

	r.str("REDIS_ADDR", &cfg.RedisAddr)
	r.str("REDIS_PASSWORD", &cfg.RedisPassword)
	r.integer("REDIS_DB", &cfg.RedisDB)
	r.duration("PRODUCT_CACHE_TTL", &cfg.ProductCacheTTL)

	r.duration("IDEMPOTENCY_TTL", &cfg.IdempotencyTTL)
	r.duration("IDEMPOTENCY_CLEANUP_INTERVAL", &cfg.IdempotencyCleanupInterval)
	r.integer("IDEMPOTENCY_CLEANUP_BATCH_SIZE", &cfg.IdempotencyCleanupBatchSize)
	r.integer("IDEMPOTENCY_CLEANUP_MAX_BATCHES", &cfg.IdempotencyCleanupMaxBatch)

	r.duration("OUTBOX_POLL_INTERVAL", &cfg.OutboxPollInterval)
	r.integer("OUTBOX_BATCH_SIZE", &cfg.OutboxBatchSize)
	r.integer("OUTBOX_MAX_ATTEMPTS", &cfg.OutboxMaxAttempts)
	r.duration("OUTBOX_RETRY_DELAY", &cfg.OutboxRetryDelay)

	r.float("PLACE_RATE_LIMIT", &cfg.PlaceRateLimit)
	r.integer("PLACE_RATE_BURST", &cfg.PlaceRateBurst)
	r.boolean("RESTOCK_ON_CANCEL", &cfg.RestockOnCancel)

	r.duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	r.duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)

	r.str("LOG_LEVEL", &cfg.LogLevel)
	r.str("LOG_FORMAT", &cfg.LogFormat)

	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if len(r.errs) > 0 {
		return Config{}, errors.Join(r.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres storage requires SF_POSTGRES_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if c.IdempotencyCleanupMaxBatch < 0 {
		errs = append(errs, errors.New("idempotency cleanup max batches must not be negative"))
	}
	if c.OutboxBatchSize <= 0 {
		errs = append(errs, errors.New("outbox batch size must be positive"))
	}
	if c.OutboxMaxAttempts <= 0 {
		errs = append(errs, errors.New("outbox max attempts must be positive"))
	}
	if c.PlaceRateLimit < 0 {
		errs = append(errs, errors.New("place rate limit must not be negative"))
	}
	if c.PlaceRateLimit > 0 && c.PlaceRateBurst <= 0 {
		errs = append(errs, errors.New("place rate burst must be positive when rate limit is set"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

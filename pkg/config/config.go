package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Duplicate checksum policies
const (
	DuplicateStrict  = "strict"  // 다른 id로 같은 파일 업로드 시 에러
	DuplicateLenient = "lenient" // 기존 스냅샷 id로 병합
)

// Worker modes
const (
	WorkerLocal = "local"
	WorkerRedis = "redis"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Snapshot storage
	StoreDriver string
	SQLitePath  string
	Database    DatabaseConfig

	// Redis
	Redis RedisConfig

	// Ingestion
	Ingest IngestConfig

	// Worker
	Worker WorkerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// IngestConfig controls how monthly files are turned into snapshots
type IngestConfig struct {
	FundConfigPath  string // recommended funds + asset class benchmarks (YAML)
	ClassMapPath    string // symbol → asset class lookup (CSV)
	StrictColumns   bool   // 필수 컬럼 누락 시 실패 (false: 테스트/진단 모드)
	DuplicatePolicy string
	HistoryDepth    int // temporal tag window (snapshots, current included)
	InboxDir        string
	InboxSchedule   string
	UploadRateLimit int // uploads per minute
}

// WorkerConfig controls where scoring runs
type WorkerConfig struct {
	Mode        string
	Concurrency int
	Queue       string
	Timeout     time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		StoreDriver: getEnv("STORE_DRIVER", StoreMemory),
		SQLitePath:  getEnv("SQLITE_PATH", "fundlens.db"),
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Ingest: IngestConfig{
			FundConfigPath:  getEnv("FUND_CONFIG_PATH", "config/funds.yaml"),
			ClassMapPath:    getEnv("CLASS_MAP_PATH", ""),
			StrictColumns:   getEnvAsBool("STRICT_COLUMNS", true),
			DuplicatePolicy: getEnv("DUPLICATE_POLICY", DuplicateLenient),
			HistoryDepth:    getEnvAsInt("HISTORY_DEPTH", 6),
			InboxDir:        getEnv("INBOX_DIR", "inbox"),
			InboxSchedule:   getEnv("INBOX_SCHEDULE", "0 0 6 * * *"),
			UploadRateLimit: getEnvAsInt("UPLOAD_RATE_LIMIT", 10),
		},

		Worker: WorkerConfig{
			Mode:        getEnv("WORKER_MODE", WorkerLocal),
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 2),
			Queue:       getEnv("WORKER_QUEUE", "fundlens:tasks"),
			Timeout:     getEnvAsDuration("WORKER_TIMEOUT", "2m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: memory, postgres, sqlite")
	}

	if c.Ingest.DuplicatePolicy != DuplicateStrict && c.Ingest.DuplicatePolicy != DuplicateLenient {
		return fmt.Errorf("DUPLICATE_POLICY must be one of: strict, lenient")
	}

	if c.Ingest.HistoryDepth < 1 {
		return fmt.Errorf("HISTORY_DEPTH must be positive")
	}

	switch c.Worker.Mode {
	case WorkerLocal:
	case WorkerRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("WORKER_MODE=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("WORKER_MODE must be one of: local, redis")
	}

	// 프로덕션에서는 컬럼 누락을 허용하지 않음
	if c.Env == "production" && !c.Ingest.StrictColumns {
		return fmt.Errorf("STRICT_COLUMNS cannot be disabled in production")
	}

	return nil
}

// IsStrictDuplicates reports whether duplicate uploads under a new id are errors
func (c *Config) IsStrictDuplicates() bool {
	return c.Ingest.DuplicatePolicy == DuplicateStrict
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

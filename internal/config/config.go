package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// PostgreSQL
	DatabaseURL string
	DBMaxConns  int

	// Dataset location on S3
	S3Region    string
	S3Bucket    string
	DatasetDate string

	// Loader
	BatchSize int

	// Read API paging
	PageSize    int
	MaxPageSize int

	LogLevel        string
	ShutdownTimeout time.Duration
}

// LoadEnvFile reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  envInt("DB_MAX_CONNS", 4),

		S3Region:    envOr("AMAZON_S3_REGION", "s3-sa-east-1"),
		S3Bucket:    envOr("AMAZON_S3_BUCKET", "serenata-de-amor-data"),
		DatasetDate: envOr("AMAZON_S3_DATASET_DATE", "2016-11-19"),

		BatchSize: envInt("BATCH_SIZE", 10000),

		PageSize:    envInt("API_PAGE_SIZE", 100),
		MaxPageSize: envInt("API_MAX_PAGE_SIZE", 1000),

		LogLevel:        envOr("LOG_LEVEL", "info"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10000
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 1000
	}
	if cfg.PageSize <= 0 || cfg.PageSize > cfg.MaxPageSize {
		cfg.PageSize = min(100, cfg.MaxPageSize)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// Dataset names must start with an 11 character "YYYY-MM-DD-" prefix to
	// be tagged with their partition.
	if _, err := time.Parse(time.DateOnly, c.DatasetDate); err != nil {
		return fmt.Errorf("AMAZON_S3_DATASET_DATE must be YYYY-MM-DD: %w", err)
	}
	if c.S3Region == "" || c.S3Bucket == "" {
		return fmt.Errorf("AMAZON_S3_REGION and AMAZON_S3_BUCKET are required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

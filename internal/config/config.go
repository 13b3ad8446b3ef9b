package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	LedgerFile     = "file"
	LedgerMemory   = "memory"
	LedgerRedis    = "redis"
	LedgerPostgres = "postgres"

	RepositoryMemory   = "memory"
	RepositoryPostgres = "postgres"

	StorageMemory     = "memory"
	StorageCloudinary = "cloudinary"
	StorageS3         = "s3"
)

// Config holds all application configuration
type Config struct {
	API       APIConfig
	Ledger    LedgerConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Logging   LoggingConfig
	DevServer DevServerConfig
	Storage   StorageConfig
	RabbitMQ  RabbitMQConfig
}

// APIConfig points the client at the venue backend.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

type LedgerConfig struct {
	Backend string
	Path    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

type DevServerConfig struct {
	Addr       string
	PublicURL  string
	Repository string
}

type StorageConfig struct {
	Backend       string
	CloudinaryURL string
	S3            S3Config
}

type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// RabbitMQConfig leaves event publishing off when URL is empty.
type RabbitMQConfig struct {
	URL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	if err := cfg.loadAPI(); err != nil {
		return nil, fmt.Errorf("load api config: %w", err)
	}
	cfg.loadLedger()
	if err := cfg.loadRedis(); err != nil {
		return nil, fmt.Errorf("load redis config: %w", err)
	}
	cfg.loadPostgres()
	cfg.loadLogging()
	cfg.loadDevServer()
	cfg.loadStorage()
	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadAPI() error {
	c.API.URL = strings.TrimRight(getEnvOrDefault("NIGHTOUT_API_URL", "http://localhost:3000"), "/")

	timeout, err := time.ParseDuration(getEnvOrDefault("NIGHTOUT_HTTP_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("invalid NIGHTOUT_HTTP_TIMEOUT: %w", err)
	}
	c.API.Timeout = timeout
	return nil
}

func (c *Config) loadLedger() {
	c.Ledger.Backend = strings.ToLower(getEnvOrDefault("LEDGER_BACKEND", LedgerFile))
	c.Ledger.Path = os.Getenv("LEDGER_PATH")
	if c.Ledger.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Ledger.Path = filepath.Join(home, ".nightout", "ledger.json")
		}
	}
}

func (c *Config) loadRedis() error {
	c.Redis.Addr = getEnvOrDefault("REDIS_ADDR", "localhost:6379")
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")

	db, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	c.Redis.DB = db
	return nil
}

func (c *Config) loadPostgres() {
	c.Postgres.Host = getEnvOrDefault("POSTGRES_HOST", "localhost")
	c.Postgres.Port = getEnvOrDefault("POSTGRES_PORT", "5432")
	c.Postgres.User = os.Getenv("POSTGRES_USER")
	c.Postgres.Password = os.Getenv("POSTGRES_PASSWORD")
	c.Postgres.DB = os.Getenv("POSTGRES_DB")
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", "json")
}

func (c *Config) loadDevServer() {
	c.DevServer.Addr = getEnvOrDefault("DEVSERVER_ADDR", "0.0.0.0:3000")
	c.DevServer.PublicURL = strings.TrimRight(getEnvOrDefault("DEVSERVER_PUBLIC_URL", "http://localhost:3000"), "/")
	c.DevServer.Repository = strings.ToLower(getEnvOrDefault("DEVSERVER_REPOSITORY", RepositoryMemory))
}

func (c *Config) loadStorage() {
	c.Storage.Backend = strings.ToLower(getEnvOrDefault("PHOTO_STORAGE", StorageMemory))
	c.Storage.CloudinaryURL = os.Getenv("CLOUDINARY_URL")
	c.Storage.S3 = S3Config{
		Endpoint:      os.Getenv("S3_ENDPOINT"),
		Region:        getEnvOrDefault("S3_REGION", "auto"),
		Bucket:        os.Getenv("S3_BUCKET"),
		AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("S3_SECRET_KEY"),
		PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, "NIGHTOUT_API_URL must be an absolute URL")
	}
	if c.API.Timeout <= 0 {
		errors = append(errors, "NIGHTOUT_HTTP_TIMEOUT must be positive")
	}

	switch c.Ledger.Backend {
	case LedgerFile:
		if c.Ledger.Path == "" {
			errors = append(errors, "LEDGER_PATH is required for the file ledger")
		}
	case LedgerMemory, LedgerRedis:
	case LedgerPostgres:
		errors = append(errors, c.postgresProblems()...)
	default:
		errors = append(errors, "LEDGER_BACKEND must be one of: file, memory, redis, postgres")
	}

	switch c.DevServer.Repository {
	case RepositoryMemory:
	case RepositoryPostgres:
		if c.Ledger.Backend != LedgerPostgres {
			errors = append(errors, c.postgresProblems()...)
		}
	default:
		errors = append(errors, "DEVSERVER_REPOSITORY must be one of: memory, postgres")
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageCloudinary:
		if c.Storage.CloudinaryURL == "" {
			errors = append(errors, "CLOUDINARY_URL is required for cloudinary photo storage")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			errors = append(errors, "S3_BUCKET is required for s3 photo storage")
		}
		if c.Storage.S3.PublicBaseURL == "" {
			errors = append(errors, "S3_PUBLIC_BASE_URL is required for s3 photo storage")
		}
	default:
		errors = append(errors, "PHOTO_STORAGE must be one of: memory, cloudinary, s3")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// RequirePostgres reports missing credentials for tools that always need
// the database, whatever the ledger and repository backends are.
func (c *Config) RequirePostgres() error {
	if problems := c.postgresProblems(); len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c *Config) postgresProblems() []string {
	var problems []string
	if c.Postgres.User == "" {
		problems = append(problems, "POSTGRES_USER is required")
	}
	if c.Postgres.DB == "" {
		problems = append(problems, "POSTGRES_DB is required")
	}
	return problems
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

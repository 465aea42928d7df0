package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	// CORSAllowedHosts lists origin hosts (host[:port]) allowed by the CORS middleware.
	CORSAllowedHosts []string
	MigrationsPath   string

	DB           DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	VisualSearch VisualSearchConfig
	Worker       WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig controls the catalog read-through cache.
type CacheConfig struct {
	CatalogTTL time.Duration
}

// VisualSearchConfig contains upload limits for the visual search endpoint.
type VisualSearchConfig struct {
	UploadDir    string
	MaxBytes     int64
	DefaultLimit int
	MaxLimit     int
}

// WorkerConfig contains interval configuration for background workers.
// A zero KnowledgeRefreshInterval disables periodic knowledge base rebuilds.
type WorkerConfig struct {
	KnowledgeRefreshInterval time.Duration
	UploadSweepInterval      time.Duration
	UploadMaxAge             time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// A missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:5173,localhost:5174"))
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", "file://migrations")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Visual search uploads
	cfg.VisualSearch = VisualSearchConfig{
		UploadDir:    getEnv("UPLOAD_DIR", "uploads/visual-search"),
		MaxBytes:     int64(getEnvInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		DefaultLimit: getEnvInt("VISUAL_SEARCH_DEFAULT_LIMIT", 12),
		MaxLimit:     getEnvInt("VISUAL_SEARCH_MAX_LIMIT", 50),
	}

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "720h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Cache.CatalogTTL, err = parseDurationEnv("CATALOG_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}

	// Workers (durations)
	if cfg.Worker.KnowledgeRefreshInterval, err = parseDurationEnv("KNOWLEDGE_REFRESH_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid KNOWLEDGE_REFRESH_INTERVAL: %w", err)
	}
	if cfg.Worker.UploadSweepInterval, err = parseDurationEnv("UPLOAD_SWEEP_INTERVAL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_SWEEP_INTERVAL: %w", err)
	}
	if cfg.Worker.UploadMaxAge, err = parseDurationEnv("UPLOAD_MAX_AGE", "1h"); err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_AGE: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}
	if cfg.VisualSearch.MaxBytes <= 0 {
		return nil, errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if cfg.VisualSearch.DefaultLimit <= 0 || cfg.VisualSearch.MaxLimit < cfg.VisualSearch.DefaultLimit {
		return nil, errors.New("VISUAL_SEARCH_DEFAULT_LIMIT must be positive and not exceed VISUAL_SEARCH_MAX_LIMIT")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

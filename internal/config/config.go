package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Scraper  ScraperConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; with an empty URL the analysis queue and change
// feed stay in-process.
type RedisConfig struct {
	URL string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency      int
	QueueSize        int
	RetryMaxAttempts int
}

type ScraperConfig struct {
	SourcesFile    string
	RequestsPerSec float64
	Burst          int
	HydrateLimit   int
	UserAgent      string
	Timeout        time.Duration
}

type AuthConfig struct {
	Secret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "intelliapply"),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "30m"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "intelliapply_resumes"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:        getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
		Scraper: ScraperConfig{
			SourcesFile:    getEnv("SCRAPER_SOURCES_FILE", "./sources.yaml"),
			RequestsPerSec: getEnvAsFloat("SCRAPER_RPS", 1),
			Burst:          getEnvAsInt("SCRAPER_BURST", 2),
			HydrateLimit:   getEnvAsInt("SCRAPER_HYDRATE_LIMIT", 4),
			UserAgent:      getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0 (compatible; IntelliApply/1.0)"),
			Timeout:        getEnvAsDuration("SCRAPER_TIMEOUT", "2m"),
		},
		Auth: AuthConfig{
			Secret: getEnv("AUTH_SECRET", "dev-secret-change-me"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

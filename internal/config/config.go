package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	Storage   StorageConfig
	Screening ScreeningConfig
	Email     EmailConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

// StorageConfig describes the object store holding uploaded resumes.
// Backend is either "local" or "s3".
type StorageConfig struct {
	Backend       string
	UploadPath    string
	Bucket        string
	PublicURL     string
	S3Region      string
	S3Bucket      string
	S3Prefix      string
	MaxUploadSize int64
}

type ScreeningConfig struct {
	MaxFileSize  int64
	Timeout      time.Duration
	Delay        time.Duration
	Concurrency  int
	PollInterval time.Duration
	Grace        time.Duration
}

type EmailConfig struct {
	ResendAPIKey string
	APIURL       string
	From         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			Env:         getEnv("ENV", "development"),
			CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "jobpost"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "jobpost_candidates"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("OBJECT_STORE", "local")),
			UploadPath:    getEnv("UPLOAD_PATH", "./uploads"),
			Bucket:        getEnv("STORAGE_BUCKET", "applications"),
			PublicURL:     getEnv("STORAGE_PUBLIC_URL", "http://localhost:3000/storage"),
			S3Region:      getEnv("AWS_REGION", "us-east-1"),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Prefix:      getEnv("S3_PREFIX", ""),
			MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 5<<20),
		},
		Screening: ScreeningConfig{
			MaxFileSize:  getEnvAsInt64("SCREENING_MAX_FILE_SIZE", 10<<20),
			Timeout:      getEnvAsDuration("SCREENING_TIMEOUT", "60s"),
			Delay:        getEnvAsDuration("SCREENING_DELAY", "2s"),
			Concurrency:  getEnvAsInt("SCREENING_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("SCREENING_POLL_INTERVAL", "1m"),
			Grace:        getEnvAsDuration("SCREENING_GRACE", "5m"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			APIURL:       getEnv("RESEND_API_URL", "https://api.resend.com"),
			From:         getEnv("EMAIL_FROM", "JobPost <onboarding@resend.dev>"),
		},
	}
}

// Validate reports settings that leave a required component unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when OBJECT_STORE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown OBJECT_STORE %q", c.Storage.Backend))
	}
	if c.Screening.MaxFileSize <= 0 {
		errs = append(errs, errors.New("SCREENING_MAX_FILE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DatabaseConfig holds PostgreSQL settings for the optional ingestion ledger.
// The ledger is enabled only when Host is set.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int `validate:"gte=0"`
	MaxIdleConns       int `validate:"gte=0"`
	ConnMaxLifetimeSec int `validate:"gte=0"`
}

// Enabled reports whether a ledger database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds settings for the AWS S3 backend.
// Endpoint is optional and only needed for S3-compatible services.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// BlobConfig selects and configures the blob store backend.
type BlobConfig struct {
	Backend       string `validate:"oneof=minio s3 memory"`
	PublicBaseURL string
	MinIO         MinIOConfig
	S3            S3Config
}

// GatewayConfig is the namespace and policy shared by ingestion and retrieval.
// It is passed to both at construction time.
type GatewayConfig struct {
	Folder            string        `validate:"required,excludes=/"`
	DefaultMaxResults int           `validate:"gt=0,ltefield=MaxResultsCap"`
	MaxResultsCap     int           `validate:"gt=0"`
	WriteTimeout      time.Duration `validate:"gt=0"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level    string `validate:"oneof=debug info warn error"`
	Encoding string `validate:"oneof=json console"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string `validate:"required"`
	UploadMaxBytes int    `validate:"gt=0"`
	Gateway        GatewayConfig
	Blob           BlobConfig
	Database       DatabaseConfig
	Log            LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		UploadMaxBytes: getEnvInt("UPLOAD_MAX_BYTES", 10*1024*1024),
		Gateway: GatewayConfig{
			Folder:            getEnv("GATEWAY_FOLDER", "403notes"),
			DefaultMaxResults: getEnvInt("GATEWAY_DEFAULT_MAX_RESULTS", 50),
			MaxResultsCap:     getEnvInt("GATEWAY_MAX_RESULTS_CAP", 100),
			WriteTimeout:      getEnvDuration("GATEWAY_WRITE_TIMEOUT", 30*time.Second),
		},
		Blob: BlobConfig{
			Backend:       strings.ToLower(getEnv("BLOB_BACKEND", "minio")),
			PublicBaseURL: getEnv("BLOB_PUBLIC_BASE_URL", ""),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			S3: S3Config{
				Region:          getEnv("S3_REGION", "us-east-1"),
				Bucket:          getEnv("S3_BUCKET", ""),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
			},
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Log: LogConfig{
			Level:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Encoding: strings.ToLower(getEnv("LOG_ENCODING", "json")),
		},
	}
}

// Validate checks field constraints and reports every violation in one error.
func (c *AppConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors) //nolint: errorlint // validator returns the concrete type
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	failed := make([]string, 0, len(errs))
	for _, fe := range errs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		failed = append(failed, fe.Namespace()+": "+tag)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(failed, ", "))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// devJWTSecret is only used when JWT_SECRET is unset.
const devJWTSecret = "college_newspaper_secret_key"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	SSL          bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig selects the article/admin store: sqlite, postgres, mongo or memory.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// StorageConfig selects the attachment store: disk or minio.
type StorageConfig struct {
	Driver     string
	UploadsDir string
	MinIO      MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// AdminConfig is the seed administrator created on first run.
type AdminConfig struct {
	Username string
	Password string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_SSL", false)
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "./college_newspaper.db")
	v.SetDefault("MONGODB_DATABASE", "college_newspaper")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("STORAGE_DRIVER", "disk")
	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("MINIO_BUCKET", "college-newspaper")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			SSL:          v.GetBool("SERVER_SSL"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			UploadsDir: v.GetString("UPLOADS_DIR"),
			MinIO: MinIOConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
				Bucket:    v.GetString("MINIO_BUCKET"),
			},
		},
		Admin: AdminConfig{
			Username: v.GetString("ADMIN_USERNAME"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}

	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set; using the development secret")
		cfg.JWT.Secret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names and the settings each driver needs.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", c.Database.Driver)
		}
	case "mongo":
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for driver mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "disk":
		if c.Storage.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR is required for storage driver disk")
		}
	case "minio":
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for storage driver minio")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL_MINUTES must be positive")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// APIConfig configures the prediction front-end.
type APIConfig struct {
	Server    ServerConfig
	DBService DBServiceConfig
	Model     ModelConfig
	Log       LogConfig
}

// DBConfig configures the prediction storage service.
type DBConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DBServiceConfig points the front-end at the storage service.
type DBServiceConfig struct {
	URL     string
	Timeout time.Duration
}

// ModelConfig selects the classifier artifact. An empty path means the
// embedded default model.
type ModelConfig struct {
	Path string
}

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (d DatabaseConfig) GetMySQLDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&timeout=5s",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// RedisConfig is optional: an empty URL disables caching and the live feed.
type RedisConfig struct {
	URL             string
	ConnectAttempts int
	CacheTTL        time.Duration
}

type CORSConfig struct {
	AllowedOrigins string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func LoadAPIConfig() (*APIConfig, error) {
	server, err := loadServer(8000)
	if err != nil {
		return nil, err
	}

	timeout, err := getDurationEnv("DATABASE_SERVICE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_SERVICE_TIMEOUT: %w", err)
	}

	cfg := &APIConfig{
		Server: server,
		DBService: DBServiceConfig{
			URL:     getEnv("DATABASE_SERVICE_URL", "http://localhost:8001"),
			Timeout: timeout,
		},
		Model: ModelConfig{
			Path: getEnv("MODEL_PATH", ""),
		},
		Log: loadLog(),
	}

	return cfg, nil
}

func LoadDBConfig() (*DBConfig, error) {
	server, err := loadServer(8001)
	if err != nil {
		return nil, err
	}

	driver := getEnv("DB_DRIVER", "sqlite")
	dbPort, err := getIntEnv("DB_PORT", defaultDBPort(driver))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	attempts, err := getIntEnv("REDIS_CONNECT_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_CONNECT_ATTEMPTS: %w", err)
	}
	if attempts < 1 {
		return nil, fmt.Errorf("invalid REDIS_CONNECT_ATTEMPTS: must be at least 1, got %d", attempts)
	}

	ttl, err := getDurationEnv("CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg := &DBConfig{
		Server: server,
		Database: DatabaseConfig{
			Driver:   driver,
			Path:     getEnv("DB_PATH", "data/db.sqlite3"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "iris"),
			Password: getEnv("DB_PASSWORD", "iris_dev_password"),
			Name:     getEnv("DB_NAME", "iris"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:             getEnv("REDIS_URL", ""),
			ConnectAttempts: attempts,
			CacheTTL:        ttl,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Log: loadLog(),
	}

	return cfg, nil
}

func loadServer(defaultPort int) (ServerConfig, error) {
	port, err := getIntEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	shutdown, err := getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	return ServerConfig{Port: port, ShutdownTimeout: shutdown}, nil
}

func loadLog() LogConfig {
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "text"),
		File:   getEnv("LOG_FILE", ""),
	}
}

func defaultDBPort(driver string) int {
	if driver == "mysql" {
		return 3306
	}
	return 5432
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

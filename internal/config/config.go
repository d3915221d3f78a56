package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Comparison ComparisonConfig
	Artifacts  ArtifactConfig
	Worker     WorkerConfig
	Annotation AnnotationConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// ComparisonConfig contains pixel comparison defaults. Threshold is the
// fraction of differing pixels that marks a regression significant; it is a
// per-suite policy with this value as the system default.
type ComparisonConfig struct {
	DefaultThreshold     float64
	ColorThreshold       float64
	IncludeAntialiasing  bool
	FetchTimeout         time.Duration
	FetchRetries         int
	MaxConcurrentWorkers int // 0 means runtime.NumCPU()
}

// ArtifactConfig controls where diff images are written
type ArtifactConfig struct {
	Dir                string
	GCSBucket          string // when set, gs:// refs and diff artifacts use this bucket
	GCSCredentialsJSON string // optional; falls back to application default credentials
}

// WorkerConfig contains the scheduled analysis sweep configuration
type WorkerConfig struct {
	Enabled  bool
	Schedule string // cron expression
}

// AnnotationConfig configures the optional AI diff annotator
type AnnotationConfig struct {
	OpenAIAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "snapdiff"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./snapdiff.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Comparison: ComparisonConfig{
			DefaultThreshold:     getEnvAsFloat("COMPARE_DEFAULT_THRESHOLD", 0.10),
			ColorThreshold:       getEnvAsFloat("COMPARE_COLOR_THRESHOLD", 0.1),
			IncludeAntialiasing:  getEnvAsBool("COMPARE_INCLUDE_ANTIALIASING", false),
			FetchTimeout:         getEnvAsDuration("SCREENSHOT_FETCH_TIMEOUT", 30*time.Second),
			FetchRetries:         getEnvAsInt("SCREENSHOT_FETCH_RETRIES", 2),
			MaxConcurrentWorkers: getEnvAsInt("COMPARE_MAX_WORKERS", 0),
		},
		Artifacts: ArtifactConfig{
			Dir:                getEnv("ARTIFACT_DIR", "./artifacts"),
			GCSBucket:          getEnv("ARTIFACT_GCS_BUCKET", ""),
			GCSCredentialsJSON: getEnv("GCS_CREDENTIALS_JSON", ""),
		},
		Worker: WorkerConfig{
			Enabled:  getEnvAsBool("ANALYSIS_WORKER_ENABLED", false),
			Schedule: getEnv("ANALYSIS_WORKER_SCHEDULE", "*/10 * * * *"),
		},
		Annotation: AnnotationConfig{
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Comparison.DefaultThreshold < 0 || c.Comparison.DefaultThreshold > 1 {
		return fmt.Errorf("COMPARE_DEFAULT_THRESHOLD must be in [0,1], got %f", c.Comparison.DefaultThreshold)
	}

	if c.Comparison.ColorThreshold < 0 || c.Comparison.ColorThreshold > 1 {
		return fmt.Errorf("COMPARE_COLOR_THRESHOLD must be in [0,1], got %f", c.Comparison.ColorThreshold)
	}

	return nil
}

// Helper functions

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SchedulerConfig holds the recurring-mission scheduler settings.
type SchedulerConfig struct {
	Enabled       bool
	Interval      time.Duration
	MissionsFile  string
	MaxConcurrent int
}

// AlertConfig holds webhook notification settings. An empty WebhookURL
// disables dispatch.
type AlertConfig struct {
	WebhookURL      string
	RequestTimeout  time.Duration
	MaxRetryElapsed time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Scheduler SchedulerConfig
	Alert     AlertConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	cfg := &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
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
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Scheduler: SchedulerConfig{
			Enabled:       getEnvBool("SCHEDULER_ENABLED", true),
			Interval:      getEnvDuration("SCHEDULER_INTERVAL", time.Hour),
			MissionsFile:  getEnv("SCHEDULER_MISSIONS_FILE", ""),
			MaxConcurrent: getEnvInt("SCHEDULER_MAX_CONCURRENT", 4),
		},
		Alert: AlertConfig{
			WebhookURL:      getEnv("ALERT_WEBHOOK_URL", ""),
			RequestTimeout:  getEnvDuration("ALERT_REQUEST_TIMEOUT", 10*time.Second),
			MaxRetryElapsed: getEnvDuration("ALERT_MAX_RETRY_ELAPSED", 30*time.Second),
		},
	}

	// A scheduler without a watch list has nothing to run; a deployment that
	// sets no missions file gets an API-only process, not a failed start.
	if cfg.Scheduler.MissionsFile == "" {
		cfg.Scheduler.Enabled = false
	}

	return cfg
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

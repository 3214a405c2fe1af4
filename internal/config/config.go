package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	// Elevated credentials bypass row-level policies for the
	// locale-preference read path. Falls back to the regular
	// credentials when unset.
	DBElevatedUser     string
	DBElevatedPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	AdminEmail    string
	DefaultLocale string

	StartWriteTimeoutMS int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "renolink"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "renolink"),
		DBUser:            getenv("DATABASE_USER", "renolink"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		DBElevatedUser:     strings.TrimSpace(getenv("DATABASE_ELEVATED_USER", "")),
		DBElevatedPassword: getenv("DATABASE_ELEVATED_PASSWORD", ""),

		SMTPHost:     getenv("SMTP_HOST", "localhost"),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", "no-reply@renolink.io"),

		AdminEmail:    getenv("ADMIN_EMAIL", "ops@renolink.io"),
		DefaultLocale: normalizeLocale(getenv("DEFAULT_LOCALE", "ko")),

		StartWriteTimeoutMS: getenvInt("START_WRITE_TIMEOUT_MS", 5000),
	}

	return cfg
}

// HasElevatedCredentials reports whether a distinct privileged DB
// credential was configured.
func (c Config) HasElevatedCredentials() bool {
	return c.DBElevatedUser != ""
}

func normalizeLocale(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "ko", "en":
		return value
	default:
		return "ko"
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

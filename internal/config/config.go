package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	Events    EventsConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ActivityLogPath    string
	CorsAllowedOrigins string
	NatsURL            string // empty disables JetStream forwarding
}

type DatabaseConfig struct {
	Connection   string
	MaxIdleConns int
	MaxOpenConns int
}

type AuthConfig struct {
	JwtSecret    string
	TokenTTL     time.Duration
	CookieName   string
	CookieSecure bool
}

type RateLimitConfig struct {
	LoginRPS   float64
	LoginBurst int
}

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

type EventsConfig struct {
	NoteTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ActivityLogPath:    getEnv("ACTIVITY_LOG_PATH", "logs/activity.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		},
		Auth: AuthConfig{
			JwtSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:     getEnvAsDuration("TOKEN_TTL", 30*24*time.Hour),
			CookieName:   getEnv("COOKIE_NAME", "token"),
			CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   getEnvAsFloat("LOGIN_RATE_RPS", 5),
			LoginBurst: getEnvAsInt("LOGIN_RATE_BURST", 10),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "notekeeper-be"),
		},
		Events: EventsConfig{
			NoteTopic: getEnv("NOTE_EVENTS_TOPIC", "NOTE_EVENTS"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Database.Connection == "" {
		return errors.New("DB_CONNECTION_STRING is required")
	}
	if c.IsProduction() && (c.Auth.JwtSecret == "" || c.Auth.JwtSecret == "dev-secret-change-me") {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Auth.JwtSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

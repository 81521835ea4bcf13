package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/senpow/italy-restaurant-booking/utils"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	devJWTSecret = "bella-vista-dev-secret"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver    string
	DatabaseDSN string

	JWTSecret   string
	JWTIssuer   string
	AdminEmails []string

	VoiceAPIKey     string
	VoiceAPIKeyHash string
	RateLimit       float64
	RateBurst       int
	CORSOrigin      string

	Timezone    string
	Location    *time.Location
	CatalogPath string

	KafkaBrokers []string
	KafkaTopic   string

	LogFormat string
}

// LoadEnv reads .env into the process environment. A missing file only logs a
// warning.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Printf("Warning: .env file not found, using system environment")
	}
}

// Load builds the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         os.Getenv("GIN_MODE"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseDSN:     getEnv("DATABASE_DSN", "bellavista.db?_busy_timeout=5000&_foreign_keys=on"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       getEnv("JWT_ISSUER", "bella-vista"),
		AdminEmails:     splitList(os.Getenv("ADMIN_EMAILS")),
		VoiceAPIKey:     os.Getenv("VOICE_API_KEY"),
		VoiceAPIKeyHash: os.Getenv("VOICE_API_KEY_HASH"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		Timezone:        getEnv("RESTAURANT_TIMEZONE", "Europe/Berlin"),
		CatalogPath:     os.Getenv("CATALOG_PATH"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "reservations.events"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		utils.InfoLogger.Printf("Warning: JWT_SECRET not found in environment, using development secret")
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.VoiceAPIKey == "" && cfg.VoiceAPIKeyHash == "" {
		utils.InfoLogger.Printf("Warning: no VOICE_API_KEY configured, the voice agent API will reject every call")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("RESTAURANT_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.RateLimit, err = strconv.ParseFloat(getEnv("API_RATE_LIMIT", "5"), 64); err != nil || cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT must be a positive number")
	}
	if cfg.RateBurst, err = strconv.Atoi(getEnv("API_RATE_BURST", "10")); err != nil || cfg.RateBurst <= 0 {
		return nil, fmt.Errorf("API_RATE_BURST must be a positive integer")
	}

	return cfg, nil
}

// IsAdminEmail matches case-insensitively against ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server and the CLI read from the environment.
type Config struct {
	Port              string
	BaseURL           string
	DBDriver          string
	DBDSN             string
	RedisAddr         string
	CacheTTL          time.Duration
	GeminiAPIKey      string
	GeminiModel       string
	JWTSecret         string
	AllowRegistration bool
	CORSOrigins       []string
	SalesSyncMode     string
	LogLevel          string
	PhoneRegion       string
	UploadDir         string
	SessionIdleTTL    time.Duration
}

// Load reads .env when present and then the process environment.
// It returns whether a .env file was found so callers can warn.
func Load() (*Config, bool) {
	foundEnv := godotenv.Load() == nil

	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		BaseURL:           getenv("BASE_URL", ""),
		DBDriver:          getenv("DB_DRIVER", "sqlite"),
		DBDSN:             os.Getenv("DB_DSN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		CacheTTL:          time.Duration(getInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenv("GEMINI_MODEL", "gemini-2.0-flash-001"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AllowRegistration: os.Getenv("ALLOW_REGISTRATION") == "true",
		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		SalesSyncMode:     getenv("SALES_SYNC_MODE", "insert-only"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		PhoneRegion:       getenv("PHONE_REGION", "BD"),
		UploadDir:         getenv("UPLOAD_DIR", "./uploads"),
		SessionIdleTTL:    time.Duration(getInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	return cfg, foundEnv
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("DB_DRIVER %q: must be mysql, sqlite or memory", c.DBDriver)
	}
	if c.DBDriver == "mysql" && c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required for the mysql driver")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

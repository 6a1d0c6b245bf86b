package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrDatabaseURLMissing = errors.New("DATABASE_URL is not set")

type Config struct {
	AppPort     string
	AppVersion  string
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	AutoMigrate bool

	// comma separated in env
	CORSAllowedOrigins []string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit  int
	APIRateWindow time.Duration

	// empty disables the write guard
	JWTSecret string
	JWTTTL    time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, ErrDatabaseURLMissing
	}

	return &Config{
		AppPort:            stringEnv("APP_PORT", "8080"),
		AppVersion:         stringEnv("APP_VERSION", "dev"),
		DatabaseURL:        dbURL,
		DBMaxConns:         int32(intEnv("DB_MAX_CONNS", 10)),
		DBMinConns:         int32(intEnv("DB_MIN_CONNS", 2)),
		AutoMigrate:        boolEnv("AUTO_MIGRATE", true),
		CORSAllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:           stringEnv("LOG_LEVEL", "info"),
		LogJSON:            boolEnv("LOG_JSON", false),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            intEnv("REDIS_DB", 0),
		APIRateLimit:       intEnv("API_RATE_LIMIT", 0),
		APIRateWindow:      time.Duration(intEnv("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTTTL:             time.Duration(intEnv("JWT_TTL_HOURS", 24)) * time.Hour,
		ReadTimeout:        time.Duration(intEnv("HTTP_READ_TIMEOUT_SECONDS", 10)) * time.Second,
		WriteTimeout:       time.Duration(intEnv("HTTP_WRITE_TIMEOUT_SECONDS", 10)) * time.Second,
	}, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// intEnv falls back to def for unset, malformed or negative values.
func intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func boolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func listEnv(key string, def []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

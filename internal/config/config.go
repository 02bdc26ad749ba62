package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application runtime configuration.
type Config struct {
	Env               string
	HTTPPort          string
	DatabaseURL       string
	DefaultCurrency   string
	JWTSecret         string
	PublicBaseURL     string
	UploadDir         string
	MaxUploadBytes    int64
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	GoogleClientID    string
	FirebaseProjectID string
	FirebaseCredFile  string
	OpenAPIPath       string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DefaultCurrency:   getEnv("CURRENCY_CODE", "PHP"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", ""),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:    getInt64("MAX_UPLOAD_BYTES", 2<<20),
		AccessTokenTTL:    getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:   getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		GoogleClientID:    os.Getenv("GOOGLE_CLIENT_ID"),
		FirebaseProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredFile:  os.Getenv("FIREBASE_CREDENTIALS"),
		OpenAPIPath:       getEnv("OPENAPI_PATH", "api/openapi.yaml"),
		ReadTimeout:       getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// getDuration accepts Go duration strings and bare integers meaning seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

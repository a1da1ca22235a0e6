package config

import (
	"log"
	"os"
	"strconv"
)

// MaxUploadBytes default: 10 MiB per uploaded file.
const defaultMaxUploadBytes = 10 << 20

type Config struct {
	Port           string
	DatabaseDSN    string
	UploadDir      string
	PublicPrefix   string
	MaxUploadBytes int64
	Env            string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "galerie.db")
	cfg.UploadDir = getEnv("UPLOAD_DIR", "public/uploads")
	cfg.PublicPrefix = getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads")
	cfg.MaxUploadBytes = parseInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	cfg.Env = getEnv("APP_ENV", "development")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

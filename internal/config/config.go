package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Store      StoreConfig
	Enrichment EnrichmentConfig
	Keys       APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type StoreConfig struct {
	Backend       string // "postgres", "redis" or "memory"
	FlushDebounce time.Duration
}

type EnrichmentConfig struct {
	BaseURL      string
	PollInterval time.Duration
	MaxPolls     int
}

type APIKeys struct {
	Enrichment string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Store: StoreConfig{
			Backend:       getEnv("STORE_BACKEND", "postgres"),
			FlushDebounce: getEnvAsDuration("STORE_FLUSH_DEBOUNCE_MS", 100) * time.Millisecond,
		},
		Enrichment: EnrichmentConfig{
			BaseURL:      getEnv("ENRICHMENT_BASE_URL", "https://api.textenrich.example.com/v1"),
			PollInterval: getEnvAsDuration("ENRICHMENT_POLL_INTERVAL_MS", 3000) * time.Millisecond,
			MaxPolls:     getEnvAsInt("ENRICHMENT_MAX_POLLS", 10),
		},
		Keys: APIKeys{
			Enrichment: getEnv("ENRICHMENT_API_KEY", ""),
		},
	}
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

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback))
}

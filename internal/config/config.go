package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	FeedURL    string
	UploadURL  string
}

func Load() *Config {
	// Missing .env is fine; env vars may come from the shell.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "medico"),
		DBPassword: getEnv("DB_PASSWORD", "medico_dev_password"),
		DBName:     getEnv("DB_NAME", "medico"),
		FeedURL:    getEnv("FEED_URL", "ws://localhost:8081/realtime"),
		UploadURL:  getEnv("UPLOAD_URL", "http://localhost:8080/storage/upload"),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

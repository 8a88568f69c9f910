package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	AIAPIKey    string
	GenModel    string
	JWTSecret   string
	WebDir      string
	Port        string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AIAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GenModel:    getEnv("GEN_MODEL", "gemini-1.5-flash"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		WebDir:      getEnv("WEB_DIR", "./web"),
		Port:        getEnv("PORT", "8080"),
	}

	if cfg.AIAPIKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

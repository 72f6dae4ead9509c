package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Rollover scheduler
	SchedulerEnabled  bool
	SchedulerInterval time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "funbudget"),
		DBPassword: getEnv("DB_PASSWORD", "funbudget"),
		DBName:     getEnv("DB_NAME", "funbudget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SchedulerEnabled: getEnv("SCHEDULER_ENABLED", "true") == "true",
	}

	// Parse scheduler interval; the rollover check is designed to run daily
	// but is idempotent, so shorter intervals are safe.
	intervalStr := getEnv("SCHEDULER_INTERVAL", "24h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		log.Printf("Warning: invalid SCHEDULER_INTERVAL value '%s', falling back to 24h\n", intervalStr)
		interval = 24 * time.Hour
	}
	config.SchedulerInterval = interval

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

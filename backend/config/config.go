package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string // sqlite or postgres
	DBPath     string // sqlite file, used when DBDriver = sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// CompletionThreshold is the watched fraction at which a video
	// counts as completed.
	CompletionThreshold float64
	// SettlementDelay is how long the simulated payment gateway takes
	// to settle a transaction.
	SettlementDelay time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:            getEnv("DB_DRIVER", "sqlite"),
		DBPath:              getEnv("DB_PATH", "campus.db"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "postgres"),
		DBName:              getEnv("DB_NAME", "campus"),
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		CompletionThreshold: getEnvFloat("COMPLETION_THRESHOLD", 0.9),
		SettlementDelay:     getEnvDuration("SETTLEMENT_DELAY", 800*time.Millisecond),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	JWTSecret       string
	MongoURI        string
	DBName          string
	SkipAuth        bool
	Environment     string
	AppId           string
	RefreshSpec     string // cron spec for the widget refresh sweep
	SendBufferSize  int    // per-connection outbound message buffer
	ShutdownTimeout int    // seconds to drain connections on stop
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "go-opsboard"),
		SkipAuth:        getEnv("SKIP_AUTH", "false") == "true",
		Environment:     getEnv("ENVIRONMENT", "development"),
		AppId:           getEnv("APP_ID", "go-opsboard"),
		RefreshSpec:     getEnv("REFRESH_SWEEP_SPEC", "* * * * *"),
		SendBufferSize:  getEnvInt("WS_SEND_BUFFER", 64),
		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 10),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

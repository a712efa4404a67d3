package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	ServerPort    string
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecretKey  string
	Environment   string
}

// Load reads configuration from environment variables or a .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=motomarket port=5432 sslmode=disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", "dev-only-insecure-secret"),
		Environment:   env,
	}

	if strings.ToLower(env) == "production" {
		missing := []string{}
		if os.Getenv("JWT_SECRET_KEY") == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if os.Getenv("DATABASE_DSN") == "" {
			missing = append(missing, "DATABASE_DSN")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

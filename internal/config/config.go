package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type env struct {
	ServerAddr string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessTokenSecret       string
	AccessTokenExpiryInSecs int64

	AdminEmail    string
	AdminPassword string

	RestockThreshold int
}

// Env holds the process configuration, loaded once at init from the
// environment (plus an optional .env file for local development).
var Env = loadEnv()

func loadEnv() *env {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return &env{
		ServerAddr: getEnv("SERVER_ADDR", "8080"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "phoneshop"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AccessTokenSecret:       getEnv("ACCESS_TOKEN_SECRET", "dev-only-secret"),
		AccessTokenExpiryInSecs: int64(getEnvAsInt("ACCESS_TOKEN_EXPIRY_IN_SECS", 60*60*24*30)),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@phoneshop.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		RestockThreshold: getEnvAsInt("RESTOCK_THRESHOLD", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

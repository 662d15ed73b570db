package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

func ConfigInt(key string, fallback int) int {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: %s is not a number (%q), using %d", key, raw, fallback)
		return fallback
	}
	return n
}

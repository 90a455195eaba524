package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env once at boot; missing file is fine in production where the
// environment is injected.
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file, using process environment")
	}
}

func Config(key string) string {
	return os.Getenv(key)
}

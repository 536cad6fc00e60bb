package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	StoreDriver string // memory | sqlite | postgres | mongo
	SQLiteDSN   string
	PostgresDSN string
	MongoURI    string
	MongoDB     string
	LogFile     string
}

func Load() Config {
	// Best effort; env vars win over .env and absence of the file is fine.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getenv("PORT", "8080"),
		StoreDriver: getenv("STORE_DRIVER", "sqlite"),
		SQLiteDSN:   getenv("SQLITE_DSN", "minimart.db"),
		PostgresDSN: getenv("POSTGRES_DSN", ""),
		MongoURI:    getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getenv("MONGO_DB", "minimart"),
		LogFile:     getenv("LOG_FILE", ""),
	}
	log.Printf("[config] PORT=%s STORE_DRIVER=%s LOG_FILE=%s", cfg.Port, cfg.StoreDriver, cfg.LogFile)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

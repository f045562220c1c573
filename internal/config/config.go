package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Port string

	// MongoURI selects the MongoDB snapshot store when set; otherwise
	// the service falls back to a local SQLite file at DBPath.
	MongoURI string
	MongoDB  string
	DBPath   string

	// RedisAddr selects the Redis publish broker when set; otherwise
	// updates fan out through the in-process hub only.
	RedisAddr string

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, honoring a .env file
// when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", ""),
		MongoDB:   getEnv("MONGO_DB", "gamehub"),
		DBPath:    getEnv("DB_PATH", "gamehub.db"),
		RedisAddr: getEnv("REDIS_ADDR", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogJSON:   os.Getenv("LOG_JSON") == "true",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

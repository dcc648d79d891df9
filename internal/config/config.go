package config

import (
	"os"
	"time"
)

type Config struct {
	MongoURI     string
	MongoDB      string
	RedisAddr    string
	Port         string
	CORSOrigins  string
	ReapInterval time.Duration
	IdleAfter    time.Duration
	EndGrace     time.Duration
}

func Load() *Config {
	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "platform"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		Port:         getEnv("PORT", "8080"),
		CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
		ReapInterval: getDuration("REAP_INTERVAL", time.Minute),
		IdleAfter:    getDuration("SESSION_IDLE_AFTER", 10*time.Minute),
		EndGrace:     getDuration("SESSION_END_GRACE", 90*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

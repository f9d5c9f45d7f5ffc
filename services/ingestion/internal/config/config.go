package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	NATSURL         string
	NATSConnTimeout time.Duration

	FeedWorkers    int
	RequestTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	config := &Config{
		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		FeedWorkers:    getEnvInt("FEED_WORKERS", 5),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"souk/services/estimation/internal/parser"
	"souk/services/estimation/internal/pricing"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string

	NATSURL         string
	NATSConnTimeout time.Duration
	NATSQueueGroup  string

	ClickHouseDSN          string
	ClickHouseMaxOpenConns int
	ClickHouseMaxIdleConns int
	ClickHouseConnMaxLife  time.Duration
	ClickHouseUsername     string
	ClickHousePassword     string
	ClickHouseDatabase     string
	ClickHouseAutoMigrate  bool

	// RedisAddr selects the cache backend. Empty means in-process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	WorkerCount       int
	WorkerBuffer      int
	ProcessingTimeout time.Duration

	OTELCollectorURL string
	OTELSampleRatio  float64

	MarketTimezone    string
	MarketCurrency    string
	MarketWeekendDays []time.Weekday
	MarketCities      []string
	PassengerNouns    []string

	location *time.Location
}

// LoadConfig reads the service configuration from the environment. A .env
// file in the working directory is applied first when present; variables
// already set in the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	defaults := parser.DefaultVocabulary()
	config := &Config{
		ServiceName: getEnvString("SERVICE_NAME", "estimation-service"),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),
		NATSQueueGroup:  getEnvString("NATS_QUEUE_GROUP", "estimation-service"),

		ClickHouseDSN:          getEnvString("CLICKHOUSE_DSN", "localhost:9000"),
		ClickHouseMaxOpenConns: getEnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		ClickHouseMaxIdleConns: getEnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ClickHouseConnMaxLife:  getEnvDuration("CLICKHOUSE_CONN_MAX_LIFE", time.Hour),
		ClickHouseUsername:     getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword:     getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase:     getEnvString("CLICKHOUSE_DATABASE", "souk"),
		ClickHouseAutoMigrate:  getEnvBool("CLICKHOUSE_AUTO_MIGRATE", false),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),

		WorkerCount:       getEnvInt("WORKER_COUNT", 4),
		WorkerBuffer:      getEnvInt("WORKER_BUFFER", 256),
		ProcessingTimeout: getEnvDuration("PROCESSING_TIMEOUT", 30*time.Second),

		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
		OTELSampleRatio:  getEnvFloat("OTEL_SAMPLE_RATIO", 1),

		MarketTimezone: getEnvString("MARKET_TIMEZONE", "Africa/Casablanca"),
		MarketCurrency: getEnvString("MARKET_CURRENCY", "MAD"),
		MarketCities:   getEnvList("MARKET_CITIES", defaults.Cities),
		PassengerNouns: getEnvList("PASSENGER_NOUNS", defaults.PassengerNouns),
	}

	loc, err := time.LoadLocation(config.MarketTimezone)
	if err != nil {
		return nil, fmt.Errorf("MARKET_TIMEZONE %q: %w", config.MarketTimezone, err)
	}
	config.location = loc

	weekend, err := parseWeekdays(getEnvString("MARKET_WEEKEND_DAYS", "saturday,sunday"))
	if err != nil {
		return nil, fmt.Errorf("MARKET_WEEKEND_DAYS: %w", err)
	}
	config.MarketWeekendDays = weekend

	if config.MarketCurrency == "" {
		return nil, fmt.Errorf("MARKET_CURRENCY must not be empty")
	}
	if config.WorkerCount < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", config.WorkerCount)
	}
	if config.WorkerBuffer < 0 {
		return nil, fmt.Errorf("WORKER_BUFFER must not be negative, got %d", config.WorkerBuffer)
	}

	return config, nil
}

// Market returns the pricing market described by the configuration.
func (c *Config) Market() pricing.Market {
	loc := c.location
	if loc == nil {
		loc = time.UTC
	}
	return pricing.Market{
		Location:    loc,
		WeekendDays: c.MarketWeekendDays,
		Currency:    c.MarketCurrency,
	}
}

// Vocabulary returns the extraction vocabulary described by the configuration.
func (c *Config) Vocabulary() parser.Vocabulary {
	return parser.Vocabulary{
		Cities:         c.MarketCities,
		PassengerNouns: c.PassengerNouns,
	}
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

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, keeping order and dropping
// blank entries. An unset or blank variable yields the default.
func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(value string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range strings.Split(value, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		day, ok := weekdays[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}

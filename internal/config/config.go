package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Browser  BrowserConfig
	Scraper  ScraperConfig
	Relay    RelayConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BrowserConfig struct {
	Headless        bool
	UserAgent       string
	ViewportWidth   int
	ViewportHeight  int
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
}

type ScraperConfig struct {
	// Interval between scheduled batch runs.
	Interval time.Duration
	// Fixed delay between two listings within a batch. Static throttling,
	// not backoff: dealer sites are touched one at a time.
	RequestDelay time.Duration
}

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 8080),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "goldy"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 10)),
			MinConns: int32(getIntOrDefault("DB_MIN_CONNS", 2)),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		Browser: BrowserConfig{
			Headless:        getBoolOrDefault("BROWSER_HEADLESS", true),
			UserAgent:       getEnvOrDefault("BROWSER_USER_AGENT", defaultUserAgent),
			ViewportWidth:   getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight:  getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			NavTimeout:      getDurationOrDefault("BROWSER_NAV_TIMEOUT", 30*time.Second),
			SelectorTimeout: getDurationOrDefault("BROWSER_SELECTOR_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			Interval:     getDurationOrDefault("SCRAPER_INTERVAL", time.Hour),
			RequestDelay: getDurationOrDefault("SCRAPER_REQUEST_DELAY", time.Second),
		},
		Relay: RelayConfig{
			PollInterval: getDurationOrDefault("RELAY_POLL_INTERVAL", 5*time.Second),
			BatchSize:    getIntOrDefault("RELAY_BATCH_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.Interval <= 0 {
		return fmt.Errorf("SCRAPER_INTERVAL must be positive")
	}

	if c.Scraper.RequestDelay < 0 {
		return fmt.Errorf("SCRAPER_REQUEST_DELAY cannot be negative")
	}

	if c.Relay.BatchSize < 1 {
		return fmt.Errorf("RELAY_BATCH_SIZE must be at least 1")
	}

	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

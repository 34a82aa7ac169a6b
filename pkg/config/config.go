package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read through this package.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External services
	Narrative NarrativeConfig
	SMS       SMSConfig
	Market    MarketConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// NarrativeConfig holds configuration for the external text-generation
// service used by the narrative credit scorer. An empty APIKey disables
// the narrative path entirely; scoring then runs on the heuristic model.
type NarrativeConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	RatePerSec  float64
	MaxTokens   int
	Temperature float64
}

// SMSConfig holds Africa's Talking messaging configuration.
// Empty credentials turn the SMS notifier into a no-op.
type SMSConfig struct {
	Username string
	APIKey   string
	BaseURL  string
	SenderID string
}

// MarketConfig holds the market price feed configuration
type MarketConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// SchedulerConfig holds the analysis refresh scheduler configuration
type SchedulerConfig struct {
	RefreshSchedule string        // cron expression (with seconds field)
	MaxAnalysisAge  time.Duration // analyses older than this are recomputed
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8084"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External services
		Narrative: NarrativeConfig{
			APIKey:      getEnv("NARRATIVE_API_KEY", ""),
			BaseURL:     getEnv("NARRATIVE_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("NARRATIVE_MODEL", "gpt-3.5-turbo"),
			Timeout:     getEnvAsDuration("NARRATIVE_TIMEOUT", "10s"),
			RatePerSec:  getEnvAsFloat("NARRATIVE_RATE_PER_SEC", 2.0),
			MaxTokens:   getEnvAsInt("NARRATIVE_MAX_TOKENS", 1000),
			Temperature: getEnvAsFloat("NARRATIVE_TEMPERATURE", 0.3),
		},

		SMS: SMSConfig{
			Username: getEnv("AFRICASTALKING_USERNAME", ""),
			APIKey:   getEnv("AFRICASTALKING_API_KEY", ""),
			BaseURL:  getEnv("AFRICASTALKING_BASE_URL", "https://api.sandbox.africastalking.com"),
			SenderID: getEnv("AFRICASTALKING_SENDER_ID", ""),
		},

		Market: MarketConfig{
			BaseURL:  getEnv("MARKET_BASE_URL", "https://amis.co.ke/site/market"),
			CacheTTL: getEnvAsDuration("MARKET_CACHE_TTL", "10m"),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 2 * * *"), // 02:00 daily
			MaxAnalysisAge:  getEnvAsDuration("MAX_ANALYSIS_AGE", "720h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
// DATABASE_URL is not required here: offline commands never open a pool,
// so the database package enforces it when a connection is made.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Narrative.Timeout <= 0 || c.Narrative.Timeout > 30*time.Second {
		return fmt.Errorf("NARRATIVE_TIMEOUT must be between 1s and 30s")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

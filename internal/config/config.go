package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the engine configuration
type Config struct {
	LogLevel  string
	LogFormat string

	// XP boost
	BoostMultiplier float64
	BoostDuration   time.Duration

	// Aggregate cache
	CacheTTL  time.Duration
	CacheSize int

	// Storage
	StorageTimeout time.Duration
	DBUser         string
	DBPassword     string
	DBHost         string
	DBPort         string
	DBName         string

	// Event publishing
	EventMaxRetries int
	EventRetryDelay time.Duration
	DeadLetterPath  string

	// Challenge pool config file; empty means the embedded default pool
	ChallengePoolPath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "progression"),
		DeadLetterPath:    getEnv("DEAD_LETTER_PATH", "events.deadletter.jsonl"),
		ChallengePoolPath: getEnv("CHALLENGE_POOL_PATH", ""),
	}

	var err error
	if cfg.BoostMultiplier, err = getEnvFloat("XP_BOOST_MULTIPLIER", 2.0); err != nil {
		return nil, err
	}
	if cfg.BoostDuration, err = getEnvDuration("XP_BOOST_DURATION", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = getEnvInt("CACHE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.StorageTimeout, err = getEnvDuration("STORAGE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.EventMaxRetries, err = getEnvInt("EVENT_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.EventRetryDelay, err = getEnvDuration("EVENT_RETRY_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks configuration ranges
func (c *Config) validate() error {
	if c.BoostMultiplier < 1 {
		return fmt.Errorf("XP_BOOST_MULTIPLIER must be >= 1, got %v", c.BoostMultiplier)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive, got %d", c.CacheSize)
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive, got %v", c.StorageTimeout)
	}
	if c.EventMaxRetries < 0 {
		return fmt.Errorf("EVENT_MAX_RETRIES must not be negative, got %d", c.EventMaxRetries)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

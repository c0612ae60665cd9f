package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Lock backends for serializing writes to a budget plan.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Over-limit policies applied when a transfer pushes a category over its ceiling.
const (
	OverLimitWarn  = "warn"
	OverLimitBlock = "block"
)

// Config holds application configuration
type Config struct {
	Env  string
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Integration API key for read-only dashboard endpoints
	IntegrationAPIKey string

	// Plan locking
	LockBackend string
	RedisAddr   string
	LockTTL     time.Duration

	OverLimitPolicy string
	RequestTimeout  time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budgetplan"),
		DBPassword: getEnv("DB_PASSWORD", "budgetplan"),
		DBName:     getEnv("DB_NAME", "budgetplan"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		IntegrationAPIKey: getEnv("INTEGRATION_API_KEY", ""),

		LockBackend: getEnv("LOCK_BACKEND", LockBackendMemory),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		OverLimitPolicy: getEnv("OVER_LIMIT_POLICY", OverLimitWarn),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)
	config.LockTTL = getDuration("LOCK_TTL", 10*time.Second)
	config.RequestTimeout = getDuration("REQUEST_TIMEOUT", 15*time.Second)

	switch config.LockBackend {
	case LockBackendMemory, LockBackendRedis:
	default:
		log.Printf("Warning: unknown LOCK_BACKEND '%s', falling back to %s\n", config.LockBackend, LockBackendMemory)
		config.LockBackend = LockBackendMemory
	}
	if config.LockBackend == LockBackendRedis && config.RedisAddr == "" {
		log.Println("Warning: LOCK_BACKEND=redis without REDIS_ADDR, falling back to memory")
		config.LockBackend = LockBackendMemory
	}

	if config.OverLimitPolicy != OverLimitWarn && config.OverLimitPolicy != OverLimitBlock {
		log.Printf("Warning: unknown OVER_LIMIT_POLICY '%s', falling back to %s\n", config.OverLimitPolicy, OverLimitWarn)
		config.OverLimitPolicy = OverLimitWarn
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// BlockOverLimit reports whether over-limit transfers must be rejected.
func (c *Config) BlockOverLimit() bool {
	return c.OverLimitPolicy == OverLimitBlock
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration variable, falling back on parse errors.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	ServerPort string
	LogLevel   string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret string

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3UseSSL           string
	S3BucketName       string
	MediaURLTTL        time.Duration

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// Feed
	Feed       FeedPolicy
	PolicyFile string

	// Chat
	ChatHandshakeTimeout time.Duration

	// Services URLs
	AuthServiceURL string
	FeedServiceURL string
	ChatServiceURL string
}

// FeedPolicy holds the platform-wide feed rules. It can be overridden by the
// YAML document referenced by POLICY_FILE.
type FeedPolicy struct {
	RequireAgeVerification bool          `yaml:"require_age_verification"`
	DefaultLimit           int           `yaml:"default_limit"`
	MaxLimit               int           `yaml:"max_limit"`
	CursorSecret           string        `yaml:"-"`
	PageCacheTTL           time.Duration `yaml:"page_cache_ttl"`
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "girlfanz"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "girlfanz-media"),
		MediaURLTTL:        getEnvDuration("MEDIA_URL_TTL", 15*time.Minute),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		Feed: FeedPolicy{
			RequireAgeVerification: getEnvBool("FEED_REQUIRE_AGE_VERIFICATION", true),
			DefaultLimit:           getEnvInt("FEED_DEFAULT_LIMIT", 20),
			MaxLimit:               getEnvInt("FEED_MAX_LIMIT", 100),
			CursorSecret:           getEnv("FEED_CURSOR_SECRET", "feed-cursor-secret-change-in-production"),
			PageCacheTTL:           getEnvDuration("FEED_PAGE_CACHE_TTL", 30*time.Second),
		},
		PolicyFile: getEnv("POLICY_FILE", ""),

		ChatHandshakeTimeout: getEnvDuration("CHAT_HANDSHAKE_TIMEOUT", 10*time.Second),

		AuthServiceURL: getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
		FeedServiceURL: getEnv("FEED_SERVICE_URL", "http://localhost:8003"),
		ChatServiceURL: getEnv("CHAT_SERVICE_URL", "http://localhost:8009"),
	}

	if config.PolicyFile != "" {
		if err := config.applyPolicyFile(config.PolicyFile); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the feed policy bounds.
func (c *Config) Validate() error {
	if c.Feed.MaxLimit < 1 {
		return fmt.Errorf("feed max limit must be positive, got %d", c.Feed.MaxLimit)
	}
	if c.Feed.DefaultLimit < 1 || c.Feed.DefaultLimit > c.Feed.MaxLimit {
		return fmt.Errorf("feed default limit must be within [1, %d], got %d", c.Feed.MaxLimit, c.Feed.DefaultLimit)
	}
	return nil
}

func (c *Config) applyPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}

	// Only keys present in the document override the env values.
	var doc struct {
		Feed struct {
			RequireAgeVerification *bool   `yaml:"require_age_verification"`
			DefaultLimit           *int    `yaml:"default_limit"`
			MaxLimit               *int    `yaml:"max_limit"`
			PageCacheTTL           *string `yaml:"page_cache_ttl"`
		} `yaml:"feed"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse policy file: %w", err)
	}

	if doc.Feed.RequireAgeVerification != nil {
		c.Feed.RequireAgeVerification = *doc.Feed.RequireAgeVerification
	}
	if doc.Feed.DefaultLimit != nil {
		c.Feed.DefaultLimit = *doc.Feed.DefaultLimit
	}
	if doc.Feed.MaxLimit != nil {
		c.Feed.MaxLimit = *doc.Feed.MaxLimit
	}
	if doc.Feed.PageCacheTTL != nil {
		ttl, err := time.ParseDuration(*doc.Feed.PageCacheTTL)
		if err != nil {
			return fmt.Errorf("invalid page_cache_ttl %q: %w", *doc.Feed.PageCacheTTL, err)
		}
		c.Feed.PageCacheTTL = ttl
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

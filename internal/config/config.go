package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// Config holds application configuration
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	ShutdownTimeout time.Duration

	StoreBackend   string
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	RedisKeyPrefix string
	DatabaseURL    string
	DynamoDBTable  string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	ExportBucket        string

	DuplicatePolicy   string
	IDStrategy        string
	StatusLabels      bool
	ClinicTimezone    string
	ClinicName        string
	ReferenceDataPath string

	EmailProvider  string
	EmailFrom      string
	EmailFromName  string
	SendGridAPIKey string

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "frontdesk:"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DynamoDBTable:  getEnv("DYNAMODB_TABLE", "frontdesk_documents"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		ExportBucket:        getEnv("EXPORT_BUCKET", ""),

		DuplicatePolicy:   getEnv("DUPLICATE_POLICY", "name_contact"),
		IDStrategy:        getEnv("ID_STRATEGY", "prefixed"),
		StatusLabels:      getEnvAsBool("STATUS_LABELS", true),
		ClinicTimezone:    getEnv("CLINIC_TIMEZONE", "Local"),
		ClinicName:        getEnv("CLINIC_NAME", "the clinic"),
		ReferenceDataPath: getEnv("REFERENCE_DATA_PATH", ""),

		EmailProvider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "none")),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", ""),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// Location resolves ClinicTimezone. "Local" or an empty value means the host zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.ClinicTimezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: CLINIC_TIMEZONE %q: %w", tz, err)
	}
	return loc, nil
}

// UsesAWS reports whether any configured component talks to AWS.
func (c *Config) UsesAWS() bool {
	return c.StoreBackend == BackendDynamoDB || c.EmailProvider == "ses" || strings.TrimSpace(c.ExportBucket) != ""
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres backend")
		}
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("config: DYNAMODB_TABLE is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.EmailProvider {
	case "none", "", "stub":
	case "ses":
		if c.EmailFrom == "" {
			return fmt.Errorf("config: EMAIL_FROM is required for email")
		}
	case "sendgrid":
		if c.EmailFrom == "" || c.SendGridAPIKey == "" {
			return fmt.Errorf("config: EMAIL_FROM and SENDGRID_API_KEY are required for sendgrid")
		}
	default:
		return fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	switch strings.ToLower(strings.TrimSpace(c.DuplicatePolicy)) {
	case "", "name_contact", "name_email", "either":
	default:
		return fmt.Errorf("config: unknown DUPLICATE_POLICY %q", c.DuplicatePolicy)
	}
	switch strings.ToLower(strings.TrimSpace(c.IDStrategy)) {
	case "", "prefixed", "sequential":
	default:
		return fmt.Errorf("config: unknown ID_STRATEGY %q", c.IDStrategy)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package config provides configuration loading and management for the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Lead sink kinds
const (
	SinkLog     = "log"
	SinkWebhook = "webhook"
	SinkKafka   = "kafka"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	LogFormat string
	LogLevel  string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	RequestTimeout time.Duration

	// Optional YAML file overriding the projection coefficients
	CoefficientsFile string

	// Rate limiting for POST endpoints
	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string

	// Lead delivery
	LeadSink          string
	LeadWebhookURL    string
	LeadWebhookAPIKey string
	KafkaBrokers      []string
	KafkaTopic        string
	LeadBatchSize     int
	LeadFlushInterval time.Duration

	// Circuit breaker around the lead sink
	SinkFailureThreshold int
	SinkResetDelay       time.Duration

	// Quote signing
	QuoteSigningEnabled bool
	QuoteValidity       time.Duration
}

// Load reads an optional .env file and then builds a Config from environment variables
func Load() Config {
	return LoadFrom()
}

// LoadFrom is Load with explicit dotenv files. Variables already set in the
// environment take precedence over the files.
func LoadFrom(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to read .env file")
	}

	return Config{
		Port:                 GetEnvOrDefault("PORT", "8080"),
		LogFormat:            strings.ToLower(GetEnvOrDefault("LOG_FORMAT", "json")),
		LogLevel:             strings.ToLower(GetEnvOrDefault("LOG_LEVEL", "info")),
		OtelEndpoint:         GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RequestTimeout:       GetEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		CoefficientsFile:     GetEnvOrDefault("COEFFICIENTS_FILE", ""),
		RateLimitRPS:         GetEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:       GetEnvAsInt("RATE_LIMIT_BURST", 20),
		CORSAllowedOrigins:   GetEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LeadSink:             strings.ToLower(GetEnvOrDefault("LEAD_SINK", SinkLog)),
		LeadWebhookURL:       GetEnvOrDefault("LEAD_WEBHOOK_URL", ""),
		LeadWebhookAPIKey:    GetEnvOrDefault("LEAD_WEBHOOK_API_KEY", ""),
		KafkaBrokers:         GetEnvAsList("KAFKA_BROKERS", nil),
		KafkaTopic:           GetEnvOrDefault("KAFKA_TOPIC", "brand-leads"),
		LeadBatchSize:        GetEnvAsInt("LEAD_BATCH_SIZE", 20),
		LeadFlushInterval:    GetEnvAsDuration("LEAD_FLUSH_INTERVAL", 30*time.Second),
		SinkFailureThreshold: GetEnvAsInt("SINK_FAILURE_THRESHOLD", 5),
		SinkResetDelay:       GetEnvAsDuration("SINK_RESET_DELAY", 30*time.Second),
		QuoteSigningEnabled:  GetEnvAsBool("QUOTE_SIGNING_ENABLED", true),
		QuoteValidity:        GetEnvAsDuration("QUOTE_VALIDITY", 30*24*time.Hour),
	}
}

// Validate checks that the configuration is internally consistent
func (c Config) Validate() error {
	switch c.LeadSink {
	case SinkLog:
	case SinkWebhook:
		if c.LeadWebhookURL == "" {
			return fmt.Errorf("LEAD_WEBHOOK_URL is required when LEAD_SINK=%s", SinkWebhook)
		}
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required when LEAD_SINK=%s", SinkKafka)
		}
	default:
		return fmt.Errorf("unknown LEAD_SINK %q", c.LeadSink)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %g rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.LeadBatchSize <= 0 || c.LeadFlushInterval <= 0 {
		return fmt.Errorf("lead batch size and flush interval must be positive")
	}
	return nil
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
		logrus.Warnf("Invalid integer in %s: %v, using default: %v", key, err, defaultValue)
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
		logrus.Warnf("Invalid float in %s: %v, using default: %v", key, err, defaultValue)
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		duration, err := time.ParseDuration(value)
		if err == nil {
			return duration
		}
		logrus.Warnf("Invalid duration in %s: %v, using default: %v", key, err, defaultValue)
	}
	return defaultValue
}

// GetEnvAsBool retrieves an environment variable as a bool with a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := GetEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
		logrus.Warnf("Invalid boolean in %s: %v, using default: %v", key, err, defaultValue)
	}
	return defaultValue
}

// GetEnvAsList retrieves a comma-separated environment variable, dropping empty entries
func GetEnvAsList(key string, defaultValue []string) []string {
	value, exists := GetEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// generateConsumerID creates a unique consumer name using hostname and PID
func generateConsumerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "analyzer"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Redis
	RedisURL      string
	ConsumerGroup string
	ConsumerID    string

	// Inference backend: "huggingface" or "openai"
	InferenceBackend    string
	InferenceTimeoutSec int

	// Hosted inference API
	HFBaseURL        string
	HFToken          string
	HFZeroShotModel  string
	HFSentimentModel string

	// OpenAI (alternate backend)
	OpenAIAPIKey string
	OpenAIModel  string

	// Worker
	WorkerMax       int
	WorkerQueueSize int
	WorkerRatePerS  int
	JobTimeoutSec   int

	// Daily summary
	SummaryEnabled    bool
	SummaryHour       int
	SummaryMinute     int
	DiscordWebhookURL string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		ConsumerGroup: getEnv("CONSUMER_GROUP", "analyzer"),
		ConsumerID:    getEnv("CONSUMER_ID", generateConsumerID()),

		// Inference
		InferenceBackend:    getEnv("INFERENCE_BACKEND", "huggingface"),
		InferenceTimeoutSec: getEnvInt("INFERENCE_TIMEOUT_SEC", 30),

		HFBaseURL:        getEnv("HF_BASE_URL", ""),
		HFToken:          getEnv("HF_TOKEN", ""),
		HFZeroShotModel:  getEnv("HF_ZEROSHOT_MODEL", "facebook/bart-large-mnli"),
		HFSentimentModel: getEnv("HF_SENTIMENT_MODEL", "distilbert-base-uncased-finetuned-sst-2-english"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),

		// Worker
		WorkerMax:       getEnvInt("WORKER_MAX", 10),
		WorkerQueueSize: getEnvInt("WORKER_QUEUE_SIZE", 1000),
		WorkerRatePerS:  getEnvInt("WORKER_RATE_PER_SEC", 100),
		JobTimeoutSec:   getEnvInt("JOB_TIMEOUT_SEC", 60),

		// Daily summary
		SummaryEnabled:    getEnvBool("SUMMARY_ENABLED", true),
		SummaryHour:       getEnvInt("SUMMARY_HOUR", 18),
		SummaryMinute:     getEnvInt("SUMMARY_MINUTE", 0),
		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
	}, nil
}

// InferenceTimeout returns the per-call timeout for model calls.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

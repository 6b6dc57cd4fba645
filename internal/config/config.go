package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Generation
	DefaultProvider     string
	DefaultModel        string
	HuggingFaceAPIKey   string
	HuggingFaceBaseURL  string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	AnthropicAPIKey     string
	GenerationMaxTokens int
	GenerationTimeout   time.Duration
	// Artifact storage (optional; in-memory when empty)
	DatabaseURL string
	TablePrefix string
	// Editing sessions
	SessionTTL   time.Duration
	HistoryLimit int
	MaxSessions  int
	IDStrategy   string // "counter" or "uuid"
	// Logging
	LogLevel    string
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		// Generation
		DefaultProvider:     getEnv("DEFAULT_PROVIDER", "huggingface"),
		DefaultModel:        getEnv("DEFAULT_MODEL", "google/gemma-2-27b-it"),
		HuggingFaceAPIKey:   getEnv("HF_KEY", ""),
		HuggingFaceBaseURL:  getEnv("HF_BASE_URL", "https://router.huggingface.co/v1"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		GenerationMaxTokens: getEnvInt("GENERATION_MAX_TOKENS", 5000),
		GenerationTimeout:   getEnvDuration("GENERATION_TIMEOUT", 2*time.Minute),
		// Artifact storage
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		// Editing sessions
		SessionTTL:   getEnvDuration("SESSION_TTL", 24*time.Hour),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 50),
		MaxSessions:  getEnvInt("MAX_SESSIONS", 10000),
		IDStrategy:   getEnv("ID_STRATEGY", "counter"),
		// Logging
		LogLevel:    getEnv("LOG_LEVEL", ""),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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

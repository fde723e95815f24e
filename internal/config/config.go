package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names a language model backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// Dataset override; empty uses the embedded one
	DataFile string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// HTTP server
	ServerPort int
	ServerURL  string

	// Non-zero makes random resets reproducible
	RandomSeed int64

	// Chat collaborator
	LLMProvider     Provider
	LLMModel        string
	LLMTimeout      time.Duration
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	AWSRegion       string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		DataFile: getEnv("ORDERMATTERS_DATA_FILE", ""),

		LogFile:  getEnv("ORDERMATTERS_LOG_FILE", "/tmp/ordermatters.log"),
		LogLevel: parseLogLevel(getEnv("ORDERMATTERS_LOG_LEVEL", "INFO")),

		ServerPort: getEnvInt("ORDERMATTERS_SERVER_PORT", 8484),
		ServerURL:  getEnv("ORDERMATTERS_SERVER_URL", "http://localhost:8484"),

		RandomSeed: int64(getEnvInt("ORDERMATTERS_RANDOM_SEED", 0)),

		LLMProvider:     Provider(strings.ToLower(getEnv("ORDERMATTERS_LLM_PROVIDER", string(ProviderOllama)))),
		LLMModel:        getEnv("ORDERMATTERS_LLM_MODEL", "llama3.2"),
		LLMTimeout:      getEnvDuration("ORDERMATTERS_LLM_TIMEOUT", 60*time.Second),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", val)
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", val)
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

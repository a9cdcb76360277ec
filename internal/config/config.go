package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	LLM        LLMConfig
	Evaluation EvaluationConfig
	LogLevel   slog.Level
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	OpenAIAPIKey        string
	OpenAIModel         string
	AnthropicAPIKey     string
	AnthropicModel      string
	OllamaBaseURL       string
	OllamaModel         string
	OpenRouterAPIKey    string
	OpenRouterModel     string
	OpenRouterReasoning bool
	DefaultProvider     string // "openai", "anthropic", "ollama", or "openrouter"
	Timeout             time.Duration
}

// EvaluationConfig holds the grading defaults applied to every evaluation.
type EvaluationConfig struct {
	Threshold       float64
	RubricFile      string
	JudgeProvider   string
	JudgeModel      string
	MaxFieldChars   int
	MaxPromptTokens int
	TuningThreshold float64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", 8000)),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
		},
		LLM: LLMConfig{
			OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o"),
			AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:      getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", ""),
			OllamaModel:         getEnv("OLLAMA_MODEL", "llama3.1:8b"),
			OpenRouterAPIKey:    getEnv("OPENROUTER_API_KEY", ""),
			OpenRouterModel:     getEnv("OPENROUTER_MODEL", "nvidia/nemotron-3-nano-30b-a3b:free"),
			OpenRouterReasoning: getEnvAsBool("OPENROUTER_ENABLE_REASONING", false),
			DefaultProvider:     getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			Timeout:             getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Evaluation: EvaluationConfig{
			Threshold:       getEnvAsFloat("EVAL_THRESHOLD", 0.8),
			RubricFile:      getEnv("EVAL_RUBRIC_FILE", ""),
			JudgeProvider:   getEnv("EVAL_JUDGE_PROVIDER", ""),
			JudgeModel:      getEnv("EVAL_JUDGE_MODEL", ""),
			MaxFieldChars:   getEnvAsInt("EVAL_MAX_FIELD_CHARS", 40000),
			MaxPromptTokens: getEnvAsInt("EVAL_MAX_PROMPT_TOKENS", 32000),
			TuningThreshold: getEnvAsFloat("TUNING_SCORE_THRESHOLD", 0.7),
		},
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	if err := cfg.Evaluation.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects thresholds outside [0,1].
func (c *EvaluationConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("invalid EVAL_THRESHOLD %.2f: must be within [0,1]", c.Threshold)
	}
	if c.TuningThreshold < 0 || c.TuningThreshold > 1 {
		return fmt.Errorf("invalid TUNING_SCORE_THRESHOLD %.2f: must be within [0,1]", c.TuningThreshold)
	}
	return nil
}

// Addr returns the server address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

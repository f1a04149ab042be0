package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults applied by FromEnv
const (
	DefaultModel            = "claude-sonnet-4-20250514"
	DefaultMaxTokens        = 8192
	DefaultMaxTurns         = 10
	DefaultDatabasePath     = "lessons.db"
	DefaultListenAddr       = ":8080"
	DefaultSessionCacheSize = 128
)

// Config contains configuration for the lesson agents
type Config struct {
	AnthropicAPIKey string // Anthropic API key (default provider)
	OpenAIAPIKey    string // OpenAI API key (optional)
	GeminiAPIKey    string // Google Gemini API key (optional)

	Provider  string // Explicit provider name; empty selects by model
	Model     string
	MaxTokens int
	MaxTurns  int // Cap on model turns per user message

	DatabasePath     string
	ListenAddr       string
	SentryDSN        string
	SessionCacheSize int // Open lesson sessions kept in memory

	SystemPromptFile string // Replaces the built-in system prompt when set
}

// Default returns a Config with every default applied and no API keys
func Default() *Config {
	return &Config{
		Model:            DefaultModel,
		MaxTokens:        DefaultMaxTokens,
		MaxTurns:         DefaultMaxTurns,
		DatabasePath:     DefaultDatabasePath,
		ListenAddr:       DefaultListenAddr,
		SessionCacheSize: DefaultSessionCacheSize,
	}
}

// FromEnv builds a Config from environment variables, falling back to defaults
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Provider = strings.TrimSpace(os.Getenv("LESSON_PROVIDER"))
	cfg.SentryDSN = os.Getenv("SENTRY_DSN")

	if v := os.Getenv("LESSON_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LESSON_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("LESSON_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	cfg.SystemPromptFile = strings.TrimSpace(os.Getenv("LESSON_SYSTEM_PROMPT_FILE"))

	ints := []struct {
		env    string
		target *int
	}{
		{"LESSON_MAX_TOKENS", &cfg.MaxTokens},
		{"LESSON_MAX_TURNS", &cfg.MaxTurns},
		{"LESSON_SESSION_CACHE", &cfg.SessionCacheSize},
	}
	for _, setting := range ints {
		v := os.Getenv(setting.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", setting.env, err)
		}
		*setting.target = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the agent cannot run with
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be positive, got %d", c.MaxTurns)
	}
	if c.SessionCacheSize <= 0 {
		return fmt.Errorf("session cache size must be positive, got %d", c.SessionCacheSize)
	}
	return nil
}

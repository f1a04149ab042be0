package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"LESSON_PROVIDER", "LESSON_MODEL", "LESSON_MAX_TOKENS", "LESSON_MAX_TURNS",
		"LESSON_DB_PATH", "LESSON_LISTEN_ADDR", "LESSON_SESSION_CACHE", "LESSON_SYSTEM_PROMPT_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.AnthropicAPIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultMaxTurns, cfg.MaxTurns)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultSessionCacheSize, cfg.SessionCacheSize)
	assert.Empty(t, cfg.SystemPromptFile)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LESSON_PROVIDER", "openai")
	t.Setenv("LESSON_MODEL", "gpt-4.1")
	t.Setenv("LESSON_MAX_TOKENS", "2048")
	t.Setenv("LESSON_MAX_TURNS", "3")
	t.Setenv("LESSON_DB_PATH", "/tmp/x.db")
	t.Setenv("LESSON_LISTEN_ADDR", ":9000")
	t.Setenv("LESSON_SESSION_CACHE", "4")
	t.Setenv("LESSON_SYSTEM_PROMPT_FILE", " /etc/lessond/prompt.md ")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4.1", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 3, cfg.MaxTurns)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 4, cfg.SessionCacheSize)
	assert.Equal(t, "/etc/lessond/prompt.md", cfg.SystemPromptFile)
}

func TestFromEnvRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		value       string
		expectError string
	}{
		{name: "not a number", env: "LESSON_MAX_TOKENS", value: "lots", expectError: "invalid LESSON_MAX_TOKENS"},
		{name: "zero turns", env: "LESSON_MAX_TURNS", value: "0", expectError: "max turns must be positive"},
		{name: "negative cache", env: "LESSON_SESSION_CACHE", value: "-1", expectError: "session cache size must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

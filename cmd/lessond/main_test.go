package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Conceptual-Machines/lesson-agents-go/agents/lesson"
	"github.com/Conceptual-Machines/lesson-agents-go/config"
	"github.com/Conceptual-Machines/lesson-agents-go/llm"
	"github.com/Conceptual-Machines/lesson-agents-go/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVoicingsCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "root and quality", args: []string{"voicings", "C", "maj"}, contains: "0. Open C (base fret 1)"},
		{name: "symbol", args: []string{"voicings", "C"}, contains: "muted: [6]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestVoicingsCommandErrors(t *testing.T) {
	_, err := runRoot(t, "voicings", "C", "sus2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available qualities: 7, m, m7, maj, maj7")

	_, err = runRoot(t, "voicings", "H7")
	assert.Error(t, err)
}

func TestAgentOptionsSystemPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("  You teach jazz guitar only.\n"), 0o600))

	cfg := config.Default()
	cfg.SystemPromptFile = path
	opts, err := agentOptions(cfg, nil)
	require.NoError(t, err)
	require.Len(t, opts, 2)

	provider := llmtest.NewScriptedProvider(llmtest.Turn{Text: "Sure."})
	agent := lesson.NewLessonAgent(cfg, provider, opts...)
	_, err = agent.Chat(context.Background(), []llm.Message{llm.TextMessage(llm.RoleUser, "hi")})
	require.NoError(t, err)

	requests := provider.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "You teach jazz guitar only.", requests[0].SystemPrompt)
}

func TestAgentOptionsSystemPromptErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(empty, []byte(" \n"), 0o600))

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{name: "missing", path: filepath.Join(dir, "missing.md"), contains: "failed to read system prompt"},
		{name: "empty", path: empty, contains: "is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.SystemPromptFile = tt.path
			_, err := agentOptions(cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	opts, err := agentOptions(config.Default(), nil)
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

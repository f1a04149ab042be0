package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderFactory creates providers based on model name or explicit provider choice
type ProviderFactory struct {
	anthropicAPIKey string
	openaiAPIKey    string
	geminiAPIKey    string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(anthropicAPIKey, openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		anthropicAPIKey: anthropicAPIKey,
		openaiAPIKey:    openaiAPIKey,
		geminiAPIKey:    geminiAPIKey,
	}
}

// GetProvider returns the appropriate provider for the given model/provider name
func (f *ProviderFactory) GetProvider(ctx context.Context, model, providerName string) (Provider, error) {
	// If provider is explicitly specified, use that
	if providerName != "" {
		return f.getProviderByName(ctx, providerName)
	}

	// Otherwise, infer from model name
	return f.getProviderByModel(ctx, model)
}

// getProviderByName creates a provider by explicit name
func (f *ProviderFactory) getProviderByName(ctx context.Context, providerName string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case providerNameAnthropic:
		return f.anthropic()

	case providerNameOpenAI:
		return f.openai()

	case providerNameGemini:
		return f.gemini(ctx)

	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: anthropic, openai, gemini)", providerName)
	}
}

// getProviderByModel infers provider from model name
func (f *ProviderFactory) getProviderByModel(ctx context.Context, model string) (Provider, error) {
	modelLower := strings.ToLower(model)

	switch {
	case strings.HasPrefix(modelLower, "gpt-"), strings.HasPrefix(modelLower, "o3"), strings.HasPrefix(modelLower, "o4"):
		return f.openai()
	case strings.HasPrefix(modelLower, "gemini-"):
		return f.gemini(ctx)
	}

	// Claude models and anything unrecognized go to Anthropic
	return f.anthropic()
}

func (f *ProviderFactory) anthropic() (Provider, error) {
	if f.anthropicAPIKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}
	return NewAnthropicProvider(f.anthropicAPIKey), nil
}

func (f *ProviderFactory) openai() (Provider, error) {
	if f.openaiAPIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}
	return NewOpenAIProvider(f.openaiAPIKey), nil
}

func (f *ProviderFactory) gemini(ctx context.Context) (Provider, error) {
	if f.geminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	provider, err := NewGeminiProvider(ctx, f.geminiAPIKey)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

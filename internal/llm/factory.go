package llm

import (
	"context"
	"fmt"

	"ai-mentor/internal/config"
)

// Factory creates the single completion backend a deployment uses.
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

func (f *Factory) CreateClient(ctx context.Context) (Client, error) {
	c := f.cfg
	switch c.LLMProvider {
	case config.ProviderClaude:
		return NewAnthropic(c.ClaudeAPIKey, c.ClaudeBaseURL, c.ClaudeModel, nil), nil
	case config.ProviderProxy:
		return NewOpenAI(c.ProxyAPIKey, c.ProxyBaseURL, c.ProxyModel, c.OpenRouterReferrer, c.OpenRouterTitle), nil
	case config.ProviderGemini:
		return NewGemini(ctx, c.GeminiAPIKey, c.GeminiModel)
	case config.ProviderYandex:
		return NewYandex(c.YandexOAuthToken, c.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}
}

// Params returns the fixed generation parameters for the configured provider.
func (f *Factory) Params() Params {
	return Params{MaxTokens: f.cfg.ResolvedMaxTokens(), Temperature: f.cfg.Temperature}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderClaude LLMProvider = "claude"
	ProviderProxy  LLMProvider = "proxy"
	ProviderGemini LLMProvider = "gemini"
	ProviderYandex LLMProvider = "yandex"
)

// ErrMissingCredential is returned when a credential required by the
// selected provider (or the bot itself) is empty.
var ErrMissingCredential = errors.New("missing required credential")

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// LLM settings
	LLMProvider LLMProvider `env:"LLM_PROVIDER" envDefault:"claude"`

	ClaudeAPIKey  string `env:"CLAUDE_API_KEY"`
	ClaudeModel   string `env:"CLAUDE_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	ClaudeBaseURL string `env:"CLAUDE_BASE_URL"`

	ProxyAPIKey  string `env:"PROXY_API_KEY"`
	ProxyBaseURL string `env:"PROXY_BASE_URL"`
	ProxyModel   string `env:"PROXY_MODEL" envDefault:"gpt-4o-mini"`

	// OpenRouter (optional, proxy provider only)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	GeminiAPIKey string `env:"GOOGLE_GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// Generation parameters, fixed for the process lifetime.
	MaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"0"`
	Temperature float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMTimeout  time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMRetries  int           `env:"LLM_RETRIES" envDefault:"1"`

	// Broadcast channel
	ChannelID   string `env:"CHANNEL_ID"`
	ChannelLink string `env:"CHANNEL_LINK"`

	// Liveness endpoint, disabled when empty
	Port string `env:"PORT"`

	// Prompts
	PersonaPath string `env:"PERSONA_PATH"`

	// Storage
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/interactions.jsonl"`

	// Reports
	ReportCron string `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	// Formatting and delivery
	MessageParseMode string        `env:"MESSAGE_PARSE_MODE" envDefault:"Markdown"`
	ChunkPause       time.Duration `env:"CHUNK_PAUSE" envDefault:"500ms"`
	MaxConcurrency   int           `env:"MAX_CONCURRENCY" envDefault:"8"`

	Debug bool `env:"LOG_DEBUG" envDefault:"false"`
}

// Load parses the environment and validates that the credentials needed by
// the selected provider are present.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LLMProvider = LLMProvider(strings.ToLower(strings.TrimSpace(string(cfg.LLMProvider))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN", ErrMissingCredential)
	}
	switch c.LLMProvider {
	case ProviderClaude:
		if c.ClaudeAPIKey == "" {
			return fmt.Errorf("%w: CLAUDE_API_KEY", ErrMissingCredential)
		}
	case ProviderProxy:
		if c.ProxyBaseURL == "" {
			return fmt.Errorf("%w: PROXY_BASE_URL", ErrMissingCredential)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GOOGLE_GEMINI_API_KEY", ErrMissingCredential)
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return fmt.Errorf("%w: YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLMProvider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE out of range: %v", c.Temperature)
	}
	if c.LLMRetries < 0 {
		return fmt.Errorf("LLM_RETRIES must not be negative: %d", c.LLMRetries)
	}
	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = 1
	}
	return nil
}

// ResolvedMaxTokens returns the output cap, falling back to the provider's
// default when LLM_MAX_TOKENS is unset.
func (c *Config) ResolvedMaxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	if c.LLMProvider == ProviderClaude {
		return 4000
	}
	return 2048
}

// ActiveModel names the model the selected provider will use.
func (c *Config) ActiveModel() string {
	switch c.LLMProvider {
	case ProviderClaude:
		return c.ClaudeModel
	case ProviderProxy:
		return c.ProxyModel
	case ProviderGemini:
		return c.GeminiModel
	case ProviderYandex:
		return "yandexgpt-lite"
	}
	return ""
}

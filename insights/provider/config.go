package provider

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

const (
	OpenAI     = "openai"
	OpenAIChat = "openai-chat"
	OpenRouter = "openrouter"
	Gemini     = "gemini"
	Anthropic  = "anthropic"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Config selects and configures one backend for the lifetime of a pipeline run.
type Config struct {
	Provider        string
	Model           string
	APIKey          string
	BaseURL         string
	MaxOutputTokens int
	ServiceTier     string

	BreakerThreshold int
	BreakerDelay     time.Duration
}

func (c Config) Validate() error {
	switch c.Provider {
	case OpenAI, OpenAIChat, OpenRouter, Gemini, Anthropic:
	case "":
		return errors.New("missing -provider")
	default:
		return fmt.Errorf("unknown provider %q (want openai|openai-chat|openrouter|gemini|anthropic)", c.Provider)
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.APIKey == "" {
		return fmt.Errorf("missing %s (or pass -api-key)", APIKeyEnv(c.Provider))
	}
	if c.MaxOutputTokens < 0 {
		return errors.New("max-output-tokens must be >= 0")
	}
	if c.BreakerThreshold < 0 {
		return errors.New("breaker-threshold must be >= 0")
	}
	return nil
}

// APIKeyEnv names the provider-specific credential variable.
func APIKeyEnv(provider string) string {
	switch provider {
	case OpenRouter:
		return "OPENROUTER_API_KEY"
	case Gemini:
		return "GEMINI_API_KEY"
	case Anthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// DefaultModel is used when neither -model nor LLM_MODEL is set.
func DefaultModel(provider string) string {
	switch provider {
	case OpenRouter:
		return "openai/gpt-3.5-turbo-16k"
	case Gemini:
		return "gemini-2.5-flash"
	case Anthropic:
		return "claude-haiku-4-5"
	default:
		return "gpt-5-mini"
	}
}

// BindFlags registers the provider flags on fs. Values left empty are filled by ResolveEnv.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Provider, "provider", c.Provider, "Model backend: openai|openai-chat|openrouter|gemini|anthropic (default: $LLM_PROVIDER or openai)")
	fs.StringVar(&c.Model, "model", c.Model, "Model name (default: $LLM_MODEL or the provider default)")
	fs.StringVar(&c.APIKey, "api-key", c.APIKey, "API key (overrides the provider's key env var)")
	fs.StringVar(&c.BaseURL, "base-url", c.BaseURL, "Override the service base URL (default: $LLM_BASE_URL)")
	fs.IntVar(&c.MaxOutputTokens, "max-output-tokens", c.MaxOutputTokens, "Cap on generated tokens per call (0 uses the backend default)")
	fs.StringVar(&c.ServiceTier, "service-tier", c.ServiceTier, "OpenAI service tier (auto, default, flex, priority)")
	fs.IntVar(&c.BreakerThreshold, "breaker-threshold", c.BreakerThreshold, "Consecutive service failures before failing fast (0 disables)")
	fs.DurationVar(&c.BreakerDelay, "breaker-delay", c.BreakerDelay, "How long the breaker stays open before probing again")
}

// ResolveEnv fills unset fields from the environment. Flags always win over env.
func (c Config) ResolveEnv(getenv func(string) string) Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = strings.ToLower(strings.TrimSpace(getenv("LLM_PROVIDER")))
	}
	if c.Provider == "" {
		c.Provider = OpenAI
	}
	if c.Model == "" {
		c.Model = strings.TrimSpace(getenv("LLM_MODEL"))
	}
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	if c.BaseURL == "" {
		c.BaseURL = strings.TrimSpace(getenv("LLM_BASE_URL"))
	}
	if c.BaseURL == "" && c.Provider == OpenRouter {
		c.BaseURL = openRouterBaseURL
	}
	if c.APIKey == "" {
		c.APIKey = strings.TrimSpace(getenv(APIKeyEnv(c.Provider)))
	}
	if c.APIKey == "" {
		c.APIKey = strings.TrimSpace(getenv("LLM_API_KEY"))
	}
	return c
}

// New builds the configured backend, wrapped in a circuit breaker when one is configured.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var c Completer
	switch cfg.Provider {
	case OpenAI:
		c = newResponsesCompleter(cfg)
	case OpenAIChat, OpenRouter:
		c = newChatCompleter(cfg)
	case Anthropic:
		c = newAnthropicCompleter(cfg)
	case Gemini:
		g, err := newGeminiCompleter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c = g
	}
	return WithBreaker(c, cfg.BreakerThreshold, cfg.BreakerDelay), nil
}


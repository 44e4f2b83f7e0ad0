// Package llm is the boundary to the text-generation service.
package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Request is a single generation call.
type Request struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// Client generates either a JSON object or free-form prose.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
	GenerateText(ctx context.Context, req Request) (string, error)
}

type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// NewClient returns the client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

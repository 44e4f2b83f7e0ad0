package relevancefilter

import (
	"fmt"

	"news-intel/internal/common/llm"
	"news-intel/internal/common/logger"
)

type Config struct {
	Model     string `mapstructure:"filter_model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     "gpt-4o-mini",
		MaxTokens: 2048,
	}
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("filter_model is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	return nil
}

type ServiceDependencies struct {
	Logger logger.Logger
	LLM    llm.Client
}

package pipeline

import "fmt"

type Config struct {
	Concurrency   int `mapstructure:"concurrency"`
	FallbackCount int `mapstructure:"fallback_count"`
	SearchLimit   int `mapstructure:"search_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Concurrency:   1,
		FallbackCount: 3,
		SearchLimit:   10,
	}
}

func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.FallbackCount <= 0 {
		return fmt.Errorf("fallback_count must be positive")
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("search_limit must be positive")
	}
	return nil
}

package emailsend

import (
	"fmt"
	"time"
)

type Config struct {
	Provider      string        `mapstructure:"provider"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SMTPHost      string        `mapstructure:"smtp_host"`
	SMTPPort      int           `mapstructure:"smtp_port"`
	SMTPUsername  string        `mapstructure:"smtp_username"`
	SMTPPassword  string        `mapstructure:"smtp_password"`
	UseTLS        bool          `mapstructure:"use_tls"`
	DefaultFrom   string        `mapstructure:"default_from"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider:      "smtp",
		Timeout:       30 * time.Second,
		SMTPHost:      "smtp.gmail.com",
		SMTPPort:      587,
		UseTLS:        true,
		SubjectPrefix: "Weekly Intel",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultFrom == "" {
		return fmt.Errorf("default_from email is required")
	}
	if c.Provider != "smtp" {
		return nil
	}
	if c.SMTPHost == "" {
		return fmt.Errorf("smtp_host is required")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("smtp_port must be between 1 and 65535")
	}
	return nil
}

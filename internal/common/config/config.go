// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Inputs        InputsConfig       `mapstructure:"inputs"`
	CRM           CRMConfig          `mapstructure:"crm"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Integrations  IntegrationConfig  `mapstructure:"integrations"`
	APIs          APIsConfig         `mapstructure:"apis"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Pipeline      PipelineConfig     `mapstructure:"pipeline"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// InputsConfig points at the files read once at startup.
type InputsConfig struct {
	CustomersFile string `mapstructure:"customers_file"`
	CRMFile       string `mapstructure:"crm_file"`
}

// CRM snapshot sources.
const (
	CRMSourceFile     = "file"
	CRMSourcePostgres = "postgres"
	CRMSourceZoho     = "zoho"
)

type CRMConfig struct {
	Source string `mapstructure:"source"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// IntegrationConfig holds settings for CRM, mail and cloud services.
type IntegrationConfig struct {
	Zoho struct {
		BaseURL   string `mapstructure:"base_url"`
		AuthToken string `mapstructure:"oauth_token"`
	} `mapstructure:"zoho"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`

	SMTP SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// Generation providers.
const (
	GenAIProviderOpenAI    = "openai"
	GenAIProviderAnthropic = "anthropic"
)

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		Provider     string `mapstructure:"provider"`
		BaseURL      string `mapstructure:"base_url"`
		APIKey       string `mapstructure:"api_key"`
		FilterModel  string `mapstructure:"filter_model"`
		ComposeModel string `mapstructure:"compose_model"`
		MaxTokens    int    `mapstructure:"max_tokens"`
		Timeout      int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`

	WebSearch struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		MaxResults int    `mapstructure:"max_results"`
		Recency    string `mapstructure:"recency"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"web_search"`
}

// Delivery providers.
const (
	EmailProviderSMTP = "smtp"
	EmailProviderSES  = "ses"
	EmailProviderLog  = "log"
)

// NotificationConfig holds settings for the notifier.
type NotificationConfig struct {
	Email struct {
		Provider      string `mapstructure:"provider"`
		FromEmail     string `mapstructure:"from_email"`
		SubjectPrefix string `mapstructure:"subject_prefix"`
	} `mapstructure:"email"`
}

// PipelineConfig controls the per-customer scheduler.
type PipelineConfig struct {
	Concurrency   int `mapstructure:"concurrency"`
	FallbackCount int `mapstructure:"fallback_count"`
}

type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "news-intel/internal/common/errors"
)

// Override adjusts a loaded configuration before it is validated.
type Override func(*Config)

// Load reads configs/config.yaml (if present), merges config.<APP_ENVIRONMENT>.yaml,
// and fills secrets from the environment.
func Load(overrides ...Override) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperrors.NewConfigError("error reading base config", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v, overrides)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string, overrides ...Override) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	return finish(v, overrides)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper, overrides []Override) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to unmarshal config", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)
	for _, override := range overrides {
		override(&cfg)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	setFromEnv(&cfg.APIs.WebSearch.APIKey, "SERPER_API_KEY", "WEB_SEARCH_API_KEY")

	switch cfg.APIs.GenAI.Provider {
	case GenAIProviderAnthropic:
		setFromEnv(&cfg.APIs.GenAI.APIKey, "ANTHROPIC_API_KEY", "GENAI_API_KEY")
	default:
		setFromEnv(&cfg.APIs.GenAI.APIKey, "OPENAI_API_KEY", "GENAI_API_KEY")
	}

	// One mailbox serves as both sender and SMTP login.
	setFromEnv(&cfg.Integrations.SMTP.Username, "EMAIL_ADDRESS", "SMTP_USERNAME")
	setFromEnv(&cfg.Integrations.SMTP.Password, "EMAIL_PASSWORD", "SMTP_PASSWORD")
	setFromEnv(&cfg.Notifications.Email.FromEmail, "EMAIL_ADDRESS")
	if cfg.Notifications.Email.FromEmail == "" {
		cfg.Notifications.Email.FromEmail = cfg.Integrations.SMTP.Username
	}

	setFromEnv(&cfg.Integrations.Zoho.AuthToken, "ZOHO_CRM_OAUTH_TOKEN")
	setFromEnv(&cfg.Integrations.AWS.Region, "AWS_REGION")

	setFromEnv(&cfg.Database.Postgres.User, "DB_USER")
	setFromEnv(&cfg.Database.Postgres.Password, "DB_PASSWORD")
}

func setFromEnv(target *string, keys ...string) {
	if *target != "" {
		return
	}
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			*target = val
			return
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "intel-notifier"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Inputs.CustomersFile == "" {
		cfg.Inputs.CustomersFile = "customers.json"
	}
	if cfg.Inputs.CRMFile == "" {
		cfg.Inputs.CRMFile = "user_crm.json"
	}
	if cfg.CRM.Source == "" {
		cfg.CRM.Source = CRMSourceFile
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 1
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Integrations.Zoho.BaseURL == "" {
		cfg.Integrations.Zoho.BaseURL = "https://www.zohoapis.com/crm/v3"
	}
	if cfg.Integrations.SMTP.Host == "" {
		cfg.Integrations.SMTP.Host = "smtp.gmail.com"
		cfg.Integrations.SMTP.UseTLS = true
	}
	if cfg.Integrations.SMTP.Port == 0 {
		cfg.Integrations.SMTP.Port = 587
	}

	if cfg.APIs.WebSearch.BaseURL == "" {
		cfg.APIs.WebSearch.BaseURL = "https://google.serper.dev/search"
	}
	if cfg.APIs.WebSearch.MaxResults == 0 {
		cfg.APIs.WebSearch.MaxResults = 10
	}
	if cfg.APIs.WebSearch.Recency == "" {
		cfg.APIs.WebSearch.Recency = "qdr:w"
	}
	if cfg.APIs.WebSearch.Timeout == 0 {
		cfg.APIs.WebSearch.Timeout = 10000
	}

	if cfg.APIs.GenAI.Provider == "" {
		cfg.APIs.GenAI.Provider = GenAIProviderOpenAI
	}
	if cfg.APIs.GenAI.FilterModel == "" {
		cfg.APIs.GenAI.FilterModel = defaultFilterModel(cfg.APIs.GenAI.Provider)
	}
	if cfg.APIs.GenAI.ComposeModel == "" {
		cfg.APIs.GenAI.ComposeModel = defaultComposeModel(cfg.APIs.GenAI.Provider)
	}
	if cfg.APIs.GenAI.MaxTokens == 0 {
		cfg.APIs.GenAI.MaxTokens = 2048
	}
	if cfg.APIs.GenAI.Timeout == 0 {
		cfg.APIs.GenAI.Timeout = 60000
	}

	if cfg.Notifications.Email.Provider == "" {
		cfg.Notifications.Email.Provider = EmailProviderSMTP
	}
	if cfg.Notifications.Email.SubjectPrefix == "" {
		cfg.Notifications.Email.SubjectPrefix = "Weekly Intel"
	}

	if cfg.Pipeline.Concurrency <= 0 {
		cfg.Pipeline.Concurrency = 1
	}
	if cfg.Pipeline.FallbackCount <= 0 {
		cfg.Pipeline.FallbackCount = 3
	}
}

func defaultFilterModel(provider string) string {
	if provider == GenAIProviderAnthropic {
		return "claude-haiku-4-5"
	}
	return "gpt-4o-mini"
}

func defaultComposeModel(provider string) string {
	if provider == GenAIProviderAnthropic {
		return "claude-sonnet-4-5"
	}
	return "gpt-4o"
}

// Validate checks the keys every run needs.
func Validate(cfg *Config) error {
	if cfg.APIs.WebSearch.APIKey == "" {
		return apperrors.NewConfigError("apis.web_search.api_key (SERPER_API_KEY) is required", nil)
	}
	if cfg.APIs.GenAI.APIKey == "" {
		return apperrors.NewConfigError("apis.genai.api_key is required", nil)
	}

	switch cfg.APIs.GenAI.Provider {
	case GenAIProviderOpenAI, GenAIProviderAnthropic:
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown apis.genai.provider %q", cfg.APIs.GenAI.Provider), nil)
	}

	switch cfg.Notifications.Email.Provider {
	case EmailProviderSMTP:
		if cfg.Integrations.SMTP.Username == "" || cfg.Integrations.SMTP.Password == "" {
			return apperrors.NewConfigError("smtp credentials (EMAIL_ADDRESS / EMAIL_PASSWORD) are required", nil)
		}
		if cfg.Notifications.Email.FromEmail == "" {
			return apperrors.NewConfigError("notifications.email.from_email is required", nil)
		}
	case EmailProviderSES:
		if cfg.Integrations.AWS.Region == "" {
			return apperrors.NewConfigError("integrations.aws.region is required for ses delivery", nil)
		}
		if cfg.Notifications.Email.FromEmail == "" {
			return apperrors.NewConfigError("notifications.email.from_email is required", nil)
		}
	case EmailProviderLog:
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown notifications.email.provider %q", cfg.Notifications.Email.Provider), nil)
	}

	switch cfg.CRM.Source {
	case CRMSourceFile:
	case CRMSourcePostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
			return apperrors.NewConfigError("database.postgres.host and database are required for the postgres crm source", nil)
		}
	case CRMSourceZoho:
		if cfg.Integrations.Zoho.AuthToken == "" {
			return apperrors.NewConfigError("integrations.zoho.oauth_token is required for the zoho crm source", nil)
		}
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown crm.source %q", cfg.CRM.Source), nil)
	}

	return nil
}

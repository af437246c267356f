package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	News       NewsConfig       `yaml:"news" mapstructure:"news"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Registry   RegistryConfig   `yaml:"registry" mapstructure:"registry"`
	Leads      LeadsConfig      `yaml:"leads" mapstructure:"leads"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Host        string   `yaml:"host" mapstructure:"host"`
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// AnthropicConfig holds completion model settings.
type AnthropicConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// NewsConfig holds news index settings.
type NewsConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	PageSize    int    `yaml:"page_size" mapstructure:"page_size"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScrapeConfig configures the website fetch.
type ScrapeConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars    int    `yaml:"max_chars" mapstructure:"max_chars"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// RegistryConfig configures the campaign-context registry source. When the
// Notion token and database ID are both set, contexts load from Notion;
// otherwise from the local JSON file at Path.
type RegistryConfig struct {
	Path             string `yaml:"path" mapstructure:"path"`
	NotionToken      string `yaml:"notion_token" mapstructure:"notion_token"`
	NotionDatabaseID string `yaml:"notion_database_id" mapstructure:"notion_database_id"`
}

// LeadsConfig selects and configures the lead record store backend.
type LeadsConfig struct {
	Backend          string `yaml:"backend" mapstructure:"backend"`
	LocalPath        string `yaml:"local_path" mapstructure:"local_path"`
	SalesforceObject string `yaml:"salesforce_object" mapstructure:"salesforce_object"`
	BriefingField    string `yaml:"briefing_field" mapstructure:"briefing_field"`
}

// SalesforceConfig holds Salesforce username-password flow credentials.
type SalesforceConfig struct {
	LoginURL       string `yaml:"login_url" mapstructure:"login_url"`
	Username       string `yaml:"username" mapstructure:"username"`
	Password       string `yaml:"password" mapstructure:"password"`
	SecurityToken  string `yaml:"security_token" mapstructure:"security_token"`
	ConsumerKey    string `yaml:"consumer_key" mapstructure:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret" mapstructure:"consumer_secret"`
}

// StoreConfig configures the run-history store backend. The conn bounds
// apply to the postgres driver only.
type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// Deployment convention: credentials live in a local .env file.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BRIEFING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy unprefixed credential names, kept for existing .env files.
	_ = v.BindEnv("anthropic.api_key", "BRIEFING_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("news.api_key", "BRIEFING_NEWS_API_KEY", "NEWS_API_KEY")
	_ = v.BindEnv("registry.notion_token", "BRIEFING_REGISTRY_NOTION_TOKEN", "NOTION_API_KEY")
	_ = v.BindEnv("salesforce.username", "BRIEFING_SALESFORCE_USERNAME", "SALESFORCE_USERNAME")
	_ = v.BindEnv("salesforce.password", "BRIEFING_SALESFORCE_PASSWORD", "SALESFORCE_PASSWORD")
	_ = v.BindEnv("salesforce.security_token", "BRIEFING_SALESFORCE_SECURITY_TOKEN", "SALESFORCE_SECURITY_TOKEN")

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1200)
	v.SetDefault("anthropic.temperature", 0.5)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.page_size", 3)
	v.SetDefault("news.timeout_secs", 10)
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("scrape.max_chars", 2000)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; BriefingBot/1.0)")
	v.SetDefault("registry.path", "contexts.json")
	v.SetDefault("leads.backend", "local")
	v.SetDefault("leads.local_path", "leads_db.json")
	v.SetDefault("leads.salesforce_object", "Lead")
	v.SetDefault("leads.briefing_field", "AI_Pre_Call_Briefing__c")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "briefing.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// isPlaceholder reports whether a credential value is empty or still looks
// like a sample copied from .env.example ("your_api_key_here" style).
func isPlaceholder(v string) bool {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return true
	}
	return strings.Contains(strings.ToLower(trimmed), "your")
}

// IsConfigured reports whether the completion backend credential is usable.
func (c AnthropicConfig) IsConfigured() bool {
	return !isPlaceholder(c.APIKey)
}

// IsConfigured reports whether the news backend credential is usable.
func (c NewsConfig) IsConfigured() bool {
	return !isPlaceholder(c.APIKey)
}

// IsConfigured reports whether the full username-password credential set is
// present. The flow also needs a connected app consumer key/secret pair.
func (c SalesforceConfig) IsConfigured() bool {
	for _, v := range []string{c.Username, c.Password, c.SecurityToken, c.ConsumerKey, c.ConsumerSecret} {
		if isPlaceholder(v) {
			return false
		}
	}
	return true
}

// NotionConfigured reports whether the registry should load from Notion.
func (c RegistryConfig) NotionConfigured() bool {
	return !isPlaceholder(c.NotionToken) && !isPlaceholder(c.NotionDatabaseID)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

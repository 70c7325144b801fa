package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "SAVEPUBLISH_CONFIG"

	// TemplateDefinitionID is the host's template-definition template.
	TemplateDefinitionID = "{AB86861A-6030-46C5-B394-E8F99E8B87DB}"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging" toml:"logging"`
	Database      DatabaseConfig     `yaml:"database" toml:"database"`
	Host          HostConfig         `yaml:"host" toml:"host"`
	Server        ServerConfig       `yaml:"server" toml:"server"`
	Sessions      SessionConfig      `yaml:"sessions" toml:"sessions"`
	Publishing    PublishingConfig   `yaml:"publishing" toml:"publishing"`
	I18n          I18nConfig         `yaml:"i18n" toml:"i18n"`
	Notifications NotificationConfig `yaml:"notifications" toml:"notifications"`
}

// LoggingConfig sets the slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"SAVEPUBLISH_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"SAVEPUBLISH_LOG_FORMAT"`
}

// DatabaseConfig selects the session store backend: sqlite, postgres or memory.
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver" env:"SAVEPUBLISH_DATABASE_DRIVER"`
	DSN    string `yaml:"dsn" toml:"dsn" env:"SAVEPUBLISH_DATABASE_DSN"`
}

// HostConfig describes how to reach the content-management host.
type HostConfig struct {
	BaseURL        string `yaml:"baseUrl" toml:"baseUrl" env:"SAVEPUBLISH_HOST_URL"`
	APIKey         string `yaml:"apiKey" toml:"apiKey" env:"SAVEPUBLISH_HOST_API_KEY"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" toml:"timeoutSeconds" env:"SAVEPUBLISH_HOST_TIMEOUT_SECONDS"`
	TargetsPage    string `yaml:"targetsPage" toml:"targetsPage"`
	LanguagesPage  string `yaml:"languagesPage" toml:"languagesPage"`
	IndexesPage    string `yaml:"indexesPage" toml:"indexesPage"`
}

// ServerConfig configures the HTTP dispatcher.
type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr" env:"SAVEPUBLISH_ADDR"`
}

// SessionConfig optionally bounds how long an unanswered prompt stays
// resumable. The default TTL of zero keeps prompts open indefinitely.
type SessionConfig struct {
	TTLMinutes           int `yaml:"ttlMinutes" toml:"ttlMinutes" env:"SAVEPUBLISH_SESSION_TTL_MINUTES"`
	SweepIntervalSeconds int `yaml:"sweepIntervalSeconds" toml:"sweepIntervalSeconds"`
}

// TTL returns the session lifetime; zero disables expiry.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// SweepInterval returns how often expired sessions are removed.
func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// PublishingConfig holds the command policy.
type PublishingConfig struct {
	RequireLockBeforeEditing bool   `yaml:"requireLockBeforeEditing" toml:"requireLockBeforeEditing" env:"SAVEPUBLISH_REQUIRE_LOCK"`
	IndexNameMatch           string `yaml:"indexNameMatch" toml:"indexNameMatch"`
	TemplateDefinitionID     string `yaml:"templateDefinitionId" toml:"templateDefinitionId"`
	AffirmativeAnswer        string `yaml:"affirmativeAnswer" toml:"affirmativeAnswer"`
}

// I18nConfig points at an optional extra translation catalog.
type I18nConfig struct {
	CatalogPath     string `yaml:"catalogPath" toml:"catalogPath" env:"SAVEPUBLISH_CATALOG"`
	DefaultLanguage string `yaml:"defaultLanguage" toml:"defaultLanguage"`
}

// NotificationConfig encapsulates outbound audit channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken" toml:"botToken" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chatId" toml:"chatId" env:"TELEGRAM_CHAT_ID"`
}

// Load reads the file named by SAVEPUBLISH_CONFIG (if present) and applies
// environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads YAML or TOML configuration from path, falling back to
// defaults on any problem, and applies environment overrides.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := decode(path, raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		log.Printf("config: cannot apply environment: %v", err)
	}

	return cfg
}

func decode(path string, raw []byte) (Config, error) {
	var fileCfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err := toml.Unmarshal(raw, &fileCfg)
		return fileCfg, err
	}
	err := yaml.Unmarshal(raw, &fileCfg)
	return fileCfg, err
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Host.BaseURL != "" {
		base.Host.BaseURL = override.Host.BaseURL
	}
	if override.Host.APIKey != "" {
		base.Host.APIKey = override.Host.APIKey
	}
	if override.Host.TimeoutSeconds > 0 {
		base.Host.TimeoutSeconds = override.Host.TimeoutSeconds
	}
	if override.Host.TargetsPage != "" {
		base.Host.TargetsPage = override.Host.TargetsPage
	}
	if override.Host.LanguagesPage != "" {
		base.Host.LanguagesPage = override.Host.LanguagesPage
	}
	if override.Host.IndexesPage != "" {
		base.Host.IndexesPage = override.Host.IndexesPage
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Sessions.TTLMinutes > 0 {
		base.Sessions.TTLMinutes = override.Sessions.TTLMinutes
	}
	if override.Sessions.SweepIntervalSeconds > 0 {
		base.Sessions.SweepIntervalSeconds = override.Sessions.SweepIntervalSeconds
	}

	if override.Publishing.RequireLockBeforeEditing {
		base.Publishing.RequireLockBeforeEditing = true
	}
	if override.Publishing.IndexNameMatch != "" {
		base.Publishing.IndexNameMatch = override.Publishing.IndexNameMatch
	}
	if override.Publishing.TemplateDefinitionID != "" {
		base.Publishing.TemplateDefinitionID = override.Publishing.TemplateDefinitionID
	}
	if override.Publishing.AffirmativeAnswer != "" {
		base.Publishing.AffirmativeAnswer = override.Publishing.AffirmativeAnswer
	}

	if override.I18n.CatalogPath != "" {
		base.I18n.CatalogPath = override.I18n.CatalogPath
	}
	if override.I18n.DefaultLanguage != "" {
		base.I18n.DefaultLanguage = override.I18n.DefaultLanguage
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "savepublish.db"},
		Host: HostConfig{
			BaseURL:        "http://localhost:8080",
			TimeoutSeconds: 15,
			TargetsPage:    "/sitecore/admin/publishing-targets",
			LanguagesPage:  "/sitecore/admin/languages",
			IndexesPage:    "/sitecore/admin/indexes",
		},
		Server:   ServerConfig{Addr: ":8090"},
		Sessions: SessionConfig{SweepIntervalSeconds: 300},
		Publishing: PublishingConfig{
			IndexNameMatch:       "web",
			TemplateDefinitionID: TemplateDefinitionID,
			AffirmativeAnswer:    "yes",
		},
		I18n: I18nConfig{DefaultLanguage: "en"},
	}
}

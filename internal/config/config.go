package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "Asia/Jerusalem"
	configPathEnv    = "CANNAPEDIA_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	llmAPIKeyEnv     = "LLM_API_KEY"
	llmModelEnv      = "LLM_MODEL"
	searchAPIKeyEnv  = "SEARCH_API_KEY"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Archive       ArchiveConfig      `yaml:"archive"`
	Store         StoreConfig        `yaml:"store"`
	Retrieval     RetrievalConfig    `yaml:"retrieval"`
	LLM           LLMConfig          `yaml:"llm"`
	Channels      ChannelsConfig     `yaml:"channels"`
	Notifications NotificationConfig `yaml:"notifications"`
	Bulk          BulkConfig         `yaml:"bulk"`
	Sweep         SweepConfig        `yaml:"sweep"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the optional Postgres archive connection. When the
// DSN is empty the filesystem snapshot is used instead.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ArchiveConfig locates the local archive snapshot.
type ArchiveConfig struct {
	SnapshotPath string `yaml:"snapshotPath"`
}

// StoreConfig locates the on-disk content store.
type StoreConfig struct {
	EntriesDir   string `yaml:"entriesDir"`
	QueuePath    string `yaml:"queuePath"`
	CatalogPath  string `yaml:"catalogPath"`
	RawOutputDir string `yaml:"rawOutputDir"`
}

// RetrievalConfig bounds context assembly per concept.
type RetrievalConfig struct {
	MaxArticles    int `yaml:"maxArticles"`
	MaxTotalChunks int `yaml:"maxTotalChunks"`
}

// LLMConfig defines how to contact the chat-completions API.
type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// ChannelsConfig wires the three external context channels.
type ChannelsConfig struct {
	MagazineSearchURL string          `yaml:"magazineSearchUrl"`
	MirrorBaseURL     string          `yaml:"mirrorBaseUrl"`
	WebSearch         WebSearchConfig `yaml:"webSearch"`
}

// WebSearchConfig describes the JSON web-search API.
type WebSearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// NotificationConfig encapsulates outbound review channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send review messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatId"`
}

// BulkConfig tunes the batch driver.
type BulkConfig struct {
	MaxAttempts      int `yaml:"maxAttempts"`
	ItemDelaySeconds int `yaml:"itemDelaySeconds"`
	BackoffSeconds   int `yaml:"backoffSeconds"`
}

// ItemDelay converts the configured seconds to a duration.
func (b BulkConfig) ItemDelay() time.Duration {
	return time.Duration(b.ItemDelaySeconds) * time.Second
}

// Backoff converts the configured seconds to a duration.
func (b BulkConfig) Backoff() time.Duration {
	return time.Duration(b.BackoffSeconds) * time.Second
}

// SweepConfig defines when and how the staleness sweep runs.
type SweepConfig struct {
	CronExpression string `yaml:"cronExpression"`
	Timezone       string `yaml:"timezone"`
	CutoffYear     int    `yaml:"cutoffYear"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(searchAPIKeyEnv); v != "" {
		c.Channels.WebSearch.APIKey = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Notifications.Telegram.ChatID = id
		} else {
			log.Printf("config: invalid %s: %v", telegramChatEnv, err)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Archive.SnapshotPath != "" {
		base.Archive = override.Archive
	}

	if override.Store.EntriesDir != "" {
		base.Store.EntriesDir = override.Store.EntriesDir
	}
	if override.Store.QueuePath != "" {
		base.Store.QueuePath = override.Store.QueuePath
	}
	if override.Store.CatalogPath != "" {
		base.Store.CatalogPath = override.Store.CatalogPath
	}
	if override.Store.RawOutputDir != "" {
		base.Store.RawOutputDir = override.Store.RawOutputDir
	}

	if override.Retrieval.MaxArticles > 0 {
		base.Retrieval.MaxArticles = override.Retrieval.MaxArticles
	}
	if override.Retrieval.MaxTotalChunks > 0 {
		base.Retrieval.MaxTotalChunks = override.Retrieval.MaxTotalChunks
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}

	if override.Channels.MagazineSearchURL != "" {
		base.Channels.MagazineSearchURL = override.Channels.MagazineSearchURL
	}
	if override.Channels.MirrorBaseURL != "" {
		base.Channels.MirrorBaseURL = override.Channels.MirrorBaseURL
	}
	if override.Channels.WebSearch.Endpoint != "" {
		base.Channels.WebSearch.Endpoint = override.Channels.WebSearch.Endpoint
	}
	if override.Channels.WebSearch.APIKey != "" {
		base.Channels.WebSearch.APIKey = override.Channels.WebSearch.APIKey
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != 0 {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Bulk.MaxAttempts > 0 {
		base.Bulk.MaxAttempts = override.Bulk.MaxAttempts
	}
	if override.Bulk.ItemDelaySeconds > 0 {
		base.Bulk.ItemDelaySeconds = override.Bulk.ItemDelaySeconds
	}
	if override.Bulk.BackoffSeconds > 0 {
		base.Bulk.BackoffSeconds = override.Bulk.BackoffSeconds
	}

	if override.Sweep.CronExpression != "" {
		base.Sweep.CronExpression = override.Sweep.CronExpression
	}
	if override.Sweep.Timezone != "" {
		base.Sweep.Timezone = override.Sweep.Timezone
	}
	if override.Sweep.CutoffYear > 0 {
		base.Sweep.CutoffYear = override.Sweep.CutoffYear
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Archive:  ArchiveConfig{SnapshotPath: "data/archive.json"},
		Store: StoreConfig{
			EntriesDir:   "data/entries",
			QueuePath:    "data/queue.json",
			CatalogPath:  "data/catalog.json",
			RawOutputDir: "data/raw",
		},
		Retrieval: RetrievalConfig{MaxArticles: 5, MaxTotalChunks: 10},
		LLM: LLMConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Bulk: BulkConfig{
			MaxAttempts:      3,
			ItemDelaySeconds: 20,
			BackoffSeconds:   5,
		},
		Sweep: SweepConfig{
			CronExpression: "0 4 * * 0",
			Timezone:       defaultTimezone,
			CutoffYear:     2020,
		},
	}
}

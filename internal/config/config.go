package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken     string `yaml:"bot_token"`
		Mode         string `yaml:"mode"` // "polling" or "webhook"
		ListenAddr   string `yaml:"listen_addr"`
		WebhookPath  string `yaml:"webhook_path"`
		DigestChatID int64  `yaml:"digest_chat_id"`
	} `yaml:"telegram"`
	Exchange struct {
		SpotURL     string `yaml:"spot_url"`
		FuturesURL  string `yaml:"futures_url"`
		Lookback    int    `yaml:"lookback"`
		TimeoutSec  int    `yaml:"timeout_sec"`
		CacheTTLSec int    `yaml:"cache_ttl_sec"`
	} `yaml:"exchange"`
	Oracle struct {
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		Model      string `yaml:"model"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"oracle"`
	Schedule struct {
		DigestCron string   `yaml:"digest_cron"`
		Watchlist  []string `yaml:"watchlist"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_MODE"); v != "" {
		cfg.Telegram.Mode = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Telegram.ListenAddr = v
	}
	if v := os.Getenv("DIGEST_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.DigestChatID = id
		}
	}
	if v := os.Getenv("XAI_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}
	if v := os.Getenv("XAI_BASE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := os.Getenv("XAI_MODEL"); v != "" {
		cfg.Oracle.Model = v
	}
	if v := os.Getenv("BINANCE_SPOT_URL"); v != "" {
		cfg.Exchange.SpotURL = v
	}
	if v := os.Getenv("BINANCE_FUTURES_URL"); v != "" {
		cfg.Exchange.FuturesURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Telegram.Mode == "" {
		cfg.Telegram.Mode = "polling"
	}
	if cfg.Telegram.ListenAddr == "" {
		cfg.Telegram.ListenAddr = ":8080"
	}
	if cfg.Telegram.WebhookPath == "" {
		cfg.Telegram.WebhookPath = "/webhook"
	}
	if cfg.Exchange.Lookback == 0 {
		cfg.Exchange.Lookback = 100
	}
	if cfg.Exchange.TimeoutSec == 0 {
		cfg.Exchange.TimeoutSec = 5
	}
	if cfg.Exchange.CacheTTLSec == 0 {
		cfg.Exchange.CacheTTLSec = 60
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "grok-4-fast-reasoning"
	}
	if cfg.Oracle.TimeoutSec == 0 {
		cfg.Oracle.TimeoutSec = 7
	}

	return cfg, nil
}

// ExchangeTimeout is the per-call budget for exchange requests.
func (c *Config) ExchangeTimeout() time.Duration {
	return time.Duration(c.Exchange.TimeoutSec) * time.Second
}

// CacheTTL bounds how long a market snapshot may be served from memory.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Exchange.CacheTTLSec) * time.Second
}

// OracleTimeout is the per-attempt budget for completion calls.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutSec) * time.Second
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.Mode != "polling" && c.Telegram.Mode != "webhook" {
		return fmt.Errorf("telegram.mode must be \"polling\" or \"webhook\", got %q", c.Telegram.Mode)
	}
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("oracle.api_key is required")
	}
	if c.Schedule.DigestCron != "" && len(c.Schedule.Watchlist) == 0 {
		return fmt.Errorf("schedule.watchlist is required when digest_cron is set")
	}
	if c.Schedule.DigestCron != "" && c.Telegram.DigestChatID == 0 {
		return fmt.Errorf("telegram.digest_chat_id is required when digest_cron is set")
	}
	return nil
}

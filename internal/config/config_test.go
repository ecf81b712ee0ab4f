package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Telegram.Mode != "polling" {
		t.Errorf("default mode should be polling, got %q", cfg.Telegram.Mode)
	}
	if cfg.Exchange.Lookback != 100 {
		t.Errorf("default lookback should be 100, got %d", cfg.Exchange.Lookback)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("default cache TTL should be 1m, got %v", cfg.CacheTTL())
	}
	if cfg.ExchangeTimeout() != 5*time.Second || cfg.OracleTimeout() != 7*time.Second {
		t.Errorf("unexpected default timeouts: %v / %v", cfg.ExchangeTimeout(), cfg.OracleTimeout())
	}
	if cfg.Oracle.Model == "" {
		t.Error("default model id should be set")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: from-file
  mode: webhook
exchange:
  lookback: 50
  cache_ttl_sec: 5
schedule:
  digest_cron: "0 0 * * * *"
  watchlist: [BTC, ETH]
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("XAI_API_KEY", "key-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("env must override file, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Oracle.APIKey != "key-from-env" {
		t.Errorf("expected api key from env, got %q", cfg.Oracle.APIKey)
	}
	if cfg.Telegram.Mode != "webhook" || cfg.Exchange.Lookback != 50 {
		t.Errorf("file values not applied: mode=%q lookback=%d", cfg.Telegram.Mode, cfg.Exchange.Lookback)
	}
	if cfg.CacheTTL() != 5*time.Second {
		t.Errorf("expected 5s TTL, got %v", cfg.CacheTTL())
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Telegram.BotToken = "t"
		cfg.Telegram.Mode = "polling"
		cfg.Oracle.APIKey = "k"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Errorf("minimal config should validate: %v", err)
	}

	cfg := base()
	cfg.Telegram.BotToken = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing bot token should fail validation")
	}

	cfg = base()
	cfg.Telegram.Mode = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown mode should fail validation")
	}

	cfg = base()
	cfg.Schedule.DigestCron = "0 0 * * * *"
	if err := cfg.Validate(); err == nil {
		t.Error("digest without watchlist should fail validation")
	}

	cfg = base()
	cfg.Schedule.DigestCron = "0 0 * * * *"
	cfg.Schedule.Watchlist = []string{"BTC"}
	if err := cfg.Validate(); err == nil {
		t.Error("digest without chat id should fail validation")
	}
	cfg.Telegram.DigestChatID = 42
	if err := cfg.Validate(); err != nil {
		t.Errorf("complete digest config should validate: %v", err)
	}
}

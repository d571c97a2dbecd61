package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Scanner.Tickers, DefaultTickers) {
		t.Errorf("expected default tickers, got %v", cfg.Scanner.Tickers)
	}
	th := cfg.Scanner.Thresholds
	if th.MinVolume != 5000 || th.OIRatioThreshold != 0.5 || th.SpreadPctMax != 0.25 {
		t.Errorf("unexpected default thresholds %+v", th)
	}
	if cfg.RefreshInterval() != 5*time.Minute {
		t.Errorf("expected 5m refresh, got %v", cfg.RefreshInterval())
	}
	if cfg.Open() != (ClockTime{6, 30}) || cfg.Close() != (ClockTime{13, 0}) {
		t.Errorf("unexpected window %s-%s", cfg.Open(), cfg.Close())
	}
	if cfg.Discord.WebhookURL != "" {
		t.Errorf("expected no webhook by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
scanner:
  tickers: [iwm, dia]
  thresholds:
    min_volume: 100
schedule:
  market_open: "09:30"
  market_close: "16:00"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TICKERS", " spy, ,qqq ,")
	t.Setenv("SPREAD_PCT_MAX", "0.1")
	t.Setenv("REFRESH_SECONDS", "60")
	t.Setenv("DISCORD_WEBHOOK_URL", " https://discord.example/hook ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Scanner.Tickers, []string{"SPY", "QQQ"}) {
		t.Errorf("expected env tickers, got %v", cfg.Scanner.Tickers)
	}
	th := cfg.Scanner.Thresholds
	if th.MinVolume != 100 || th.SpreadPctMax != 0.1 || th.OIRatioThreshold != 0.5 {
		t.Errorf("unexpected thresholds %+v", th)
	}
	if cfg.Open() != (ClockTime{9, 30}) || cfg.Close() != (ClockTime{16, 0}) {
		t.Errorf("unexpected window %s-%s", cfg.Open(), cfg.Close())
	}
	if cfg.RefreshInterval() != time.Minute {
		t.Errorf("expected 1m refresh, got %v", cfg.RefreshInterval())
	}
	if cfg.Discord.WebhookURL != "https://discord.example/hook" {
		t.Errorf("expected trimmed webhook, got %q", cfg.Discord.WebhookURL)
	}
}

func TestLoad_MalformedEnvKeepsDefaults(t *testing.T) {
	t.Setenv("MIN_VOLUME", "lots")
	t.Setenv("REFRESH_SECONDS", "5m")
	t.Setenv("MARKET_OPEN", "half past six")
	t.Setenv("MARKET_CLOSE", "25:00")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scanner.Thresholds.MinVolume != 5000 || cfg.Schedule.RefreshSeconds != 300 {
		t.Errorf("malformed numbers should keep defaults, got %+v / %d", cfg.Scanner.Thresholds, cfg.Schedule.RefreshSeconds)
	}
	if cfg.Open() != (ClockTime{6, 30}) || cfg.Close() != (ClockTime{13, 0}) {
		t.Errorf("malformed times should fall back, got %s-%s", cfg.Open(), cfg.Close())
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scanner: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no tickers", func(c *Config) { c.Scanner.Tickers = nil }},
		{"negative volume", func(c *Config) { c.Scanner.Thresholds.MinVolume = -1 }},
		{"zero refresh", func(c *Config) { c.Schedule.RefreshSeconds = 0 }},
		{"inverted window", func(c *Config) { c.Schedule.MarketOpen, c.Schedule.MarketClose = "14:00", "09:00" }},
		{"unknown zone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestParseClock(t *testing.T) {
	fb := ClockTime{1, 2}
	tests := []struct {
		in   string
		want ClockTime
	}{
		{"06:30", ClockTime{6, 30}},
		{" 9:05 ", ClockTime{9, 5}},
		{"23:59", ClockTime{23, 59}},
		{"24:00", fb},
		{"12:60", fb},
		{"1230", fb},
		{"", fb},
		{"ab:cd", fb},
	}
	for _, tt := range tests {
		if got := ParseClock(tt.in, fb); got != tt.want {
			t.Errorf("ParseClock(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

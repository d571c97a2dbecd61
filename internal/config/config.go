package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ZeroDTEScanner/internal/screener"

	"github.com/phuslu/log"
	"gopkg.in/yaml.v3"
)

// DefaultTickers is the watch list used when none is configured.
var DefaultTickers = []string{"SPY", "QQQ", "AAPL", "TSLA", "NVDA", "AMD", "META"}

var (
	defaultOpen  = ClockTime{Hour: 6, Minute: 30}
	defaultClose = ClockTime{Hour: 13, Minute: 0}
)

// Config holds all application configuration. It is loaded once and passed
// by value; nothing reads it as global state.
type Config struct {
	Discord struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"discord"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Scanner struct {
		Tickers    []string            `yaml:"tickers"`
		Thresholds screener.Thresholds `yaml:"thresholds"`
	} `yaml:"scanner"`
	Schedule struct {
		RefreshSeconds int    `yaml:"refresh_seconds"`
		MarketOpen     string `yaml:"market_open"`
		MarketClose    string `yaml:"market_close"`
		Timezone       string `yaml:"timezone"`
		Calendar       string `yaml:"calendar"`
		RunOnStart     bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	cfg := &Config{}
	cfg.Scanner.Tickers = append([]string(nil), DefaultTickers...)
	cfg.Scanner.Thresholds = screener.DefaultThresholds()
	cfg.Schedule.RefreshSeconds = 300
	cfg.Schedule.MarketOpen = defaultOpen.String()
	cfg.Schedule.MarketClose = defaultClose.String()
	cfg.Schedule.Calendar = "xnys"
	cfg.Schedule.RunOnStart = true
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	return cfg
}

// Load applies defaults, then the YAML file at path (a missing file is
// fine), then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	cfg.Scanner.Tickers = normalizeTickers(cfg.Scanner.Tickers)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Discord.WebhookURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("TICKERS"); v != "" {
		cfg.Scanner.Tickers = strings.Split(v, ",")
	}
	envFloat("MIN_VOLUME", &cfg.Scanner.Thresholds.MinVolume)
	envFloat("OI_RATIO_THRESHOLD", &cfg.Scanner.Thresholds.OIRatioThreshold)
	envFloat("SPREAD_PCT_MAX", &cfg.Scanner.Thresholds.SpreadPctMax)
	envInt("REFRESH_SECONDS", &cfg.Schedule.RefreshSeconds)
	if v := os.Getenv("MARKET_OPEN"); v != "" {
		cfg.Schedule.MarketOpen = v
	}
	if v := os.Getenv("MARKET_CLOSE"); v != "" {
		cfg.Schedule.MarketClose = v
	}
	if v := os.Getenv("MARKET_TIMEZONE"); v != "" {
		cfg.Schedule.Timezone = v
	}
	if v := os.Getenv("MARKET_CALENDAR"); v != "" {
		cfg.Schedule.Calendar = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.RunOnStart = b
		} else {
			log.Warn().Str("key", "RUN_ON_START").Str("value", v).Msg("ignoring malformed boolean")
		}
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func envFloat(key string, dst *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring malformed number")
		return
	}
	*dst = f
}

func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring malformed integer")
		return
	}
	*dst = n
}

// normalizeTickers trims and upper-cases symbols and drops empty entries.
func normalizeTickers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that all settings are usable.
func (c *Config) Validate() error {
	if len(c.Scanner.Tickers) == 0 {
		return fmt.Errorf("scanner.tickers must not be empty")
	}
	th := c.Scanner.Thresholds
	if th.MinVolume < 0 || th.OIRatioThreshold < 0 || th.SpreadPctMax < 0 {
		return fmt.Errorf("scanner.thresholds must not be negative")
	}
	if c.Schedule.RefreshSeconds < 1 {
		return fmt.Errorf("schedule.refresh_seconds must be at least 1")
	}
	if c.Open().After(c.Close()) {
		return fmt.Errorf("schedule.market_open %s is after market_close %s", c.Open(), c.Close())
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}

// Open returns the start of the daily scan window.
func (c *Config) Open() ClockTime {
	return ParseClock(c.Schedule.MarketOpen, defaultOpen)
}

// Close returns the end of the daily scan window.
func (c *Config) Close() ClockTime {
	return ParseClock(c.Schedule.MarketClose, defaultClose)
}

// RefreshInterval returns the delay between scan cycles.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Schedule.RefreshSeconds) * time.Second
}

// Location returns the zone the window is expressed in; empty means process local.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Schedule.Timezone)
}

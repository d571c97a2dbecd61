package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ZeroDTEScanner/internal/collector"
	"ZeroDTEScanner/internal/config"
	"ZeroDTEScanner/internal/logging"
	"ZeroDTEScanner/internal/notifier"
	"ZeroDTEScanner/internal/scanner"
	"ZeroDTEScanner/internal/scheduler"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
)

func main() {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Strs("tickers", cfg.Scanner.Tickers).Msg("0DTE scanner starting")

	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewGatewayFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	var n notifier.Notifier
	if cfg.Discord.WebhookURL != "" {
		n = notifier.NewDiscordNotifier(cfg.Discord.WebhookURL, cfg.Proxy)
	} else {
		log.Warn().Msg("DISCORD_WEBHOOK_URL not set, reports go to stdout")
		n = notifier.NewConsoleNotifier(os.Stdout)
	}

	loc, _ := cfg.Location()
	window := scheduler.Window{
		Open:     cfg.Open(),
		Close:    cfg.Close(),
		Location: loc,
		Calendar: scheduler.LoadCalendar(cfg.Schedule.Calendar),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sc := scanner.New(collector.NewCollector(fetcher), n, cfg.Scanner.Tickers, cfg.Scanner.Thresholds)
	sched := scheduler.NewScheduler(ctx, sc, window, cfg.RefreshInterval())
	sched.Start(cfg.Schedule.RunOnStart)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	log.Info().Msg("0DTE scanner stopped")
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/arbscan/config"
	"github.com/alejandrodnm/arbscan/internal/adapters/httpapi"
	"github.com/alejandrodnm/arbscan/internal/adapters/notify"
	"github.com/alejandrodnm/arbscan/internal/adapters/oddsapi"
	"github.com/alejandrodnm/arbscan/internal/adapters/storage"
	"github.com/alejandrodnm/arbscan/internal/application/scanner"
	"github.com/alejandrodnm/arbscan/internal/domain"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	serve := flag.Bool("serve", false, "start the HTTP API server instead of the scan loop")
	sport := flag.String("sport", "", "scan a single sport key and exit")
	stake := flag.Float64("stake", 0, "total stake for the example split (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full opportunity table (default: compact 1-line)")
	details := flag.Bool("details", false, "print per-opportunity breakdown with stake split")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *stake > 0 {
		cfg.Scanner.Bankroll = *stake
	}
	setupLogger(cfg.Log)

	if cfg.API.Key == "" {
		slog.Error("no API key configured — set ODDS_API_KEY or api.key in the config file")
		os.Exit(1)
	}

	slog.Info("arbscan starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"sports", len(cfg.Scanner.Sports),
		"min_profit_margin", cfg.Scanner.MinProfitMargin,
		"serve", *serve,
		"once", *once,
	)

	client := oddsapi.NewClient(oddsapi.Config{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.Key,
		Regions:    cfg.API.Regions,
		Markets:    cfg.API.Markets,
		Bookmakers: cfg.API.Bookmakers,
		CacheTTL:   cfg.CacheTTL(),
	})

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole(cfg.Scanner.Bankroll, *table, *details)

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.MinProfitMargin = cfg.Scanner.MinProfitMargin
	scanCfg.Sports = cfg.Scanner.Sports
	scanCfg.Workers = cfg.Scanner.Workers
	scanCfg.DryRun = *once

	s := scanner.New(scanCfg, client, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *sport != "":
		runSingleSport(ctx, s, notifier, *sport, cfg.Scanner.MinProfitMargin)

	case *serve:
		srv := httpapi.NewServer(httpapi.Config{
			Addr:            cfg.Server.Addr,
			Sports:          cfg.Scanner.Sports,
			Bookmakers:      config.DefaultBookmakers(),
			MinProfitMargin: cfg.Scanner.MinProfitMargin,
			CORSOrigins:     cfg.Server.CORSOrigins,
		}, client, store, s)

		if err := runServer(ctx, srv.HTTPServer()); err != nil {
			slog.Error("server exited with error", "err", err)
			os.Exit(1)
		}

	default:
		if err := s.Run(ctx); err != nil {
			slog.Error("scanner exited with error", "err", err)
			os.Exit(1)
		}
	}

	slog.Info("arbscan stopped cleanly")
}

// runSingleSport escanea un solo deporte y pinta el resultado.
func runSingleSport(ctx context.Context, s *scanner.Scanner, notifier *notify.Console, sportKey string, minProfitMargin float64) {
	result, err := s.ScanSport(ctx, sportKey, minProfitMargin)
	if err != nil {
		slog.Error("scan failed", "sport", sportKey, "err", err)
		os.Exit(1)
	}
	if err := notifier.Notify(ctx, []domain.ScanResult{result}); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

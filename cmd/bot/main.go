package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"QEngine/internal/collector"
	"QEngine/internal/config"
	"QEngine/internal/notifier"
	"QEngine/internal/oracle"
	"QEngine/internal/recorder"
	"QEngine/internal/scheduler"
	"QEngine/internal/webhook"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] Q-Engine starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init market data collector
	fetcher := collector.NewBinanceFetcher(cfg.Exchange.SpotURL, cfg.Exchange.FuturesURL, cfg.Proxy, cfg.ExchangeTimeout())
	col := collector.NewCollector(fetcher, cfg.Exchange.Lookback, cfg.CacheTTL())
	log.Printf("[INFO] data source: %s (lookback %d, cache %v)", fetcher.Name(), col.Lookback, cfg.CacheTTL())

	// Init signal oracle
	completer := oracle.NewXAIClient(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.Model, cfg.Proxy, cfg.OracleTimeout())
	orc := oracle.NewOracle(completer)
	log.Printf("[INFO] oracle model: %s", completer.Name())

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire the pipeline dispatcher
	dispatcher := webhook.NewDispatcher(col, orc, tn, rec)

	// Optional watchlist digest
	if cfg.Schedule.DigestCron != "" {
		sched := scheduler.NewScheduler(dispatcher, tn, cfg.Schedule.Watchlist, cfg.Telegram.DigestChatID)
		if err := sched.RegisterDigest(cfg.Schedule.DigestCron); err != nil {
			log.Fatalf("[FATAL] register digest task: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, executing digest now")
			go sched.RunDigestNow()
		}
	}

	// Inbound updates: long polling or webhook server
	switch cfg.Telegram.Mode {
	case "webhook":
		mux := http.NewServeMux()
		mux.Handle(cfg.Telegram.WebhookPath, dispatcher)
		srv := &http.Server{Addr: cfg.Telegram.ListenAddr, Handler: mux}
		go func() {
			log.Printf("[INFO] webhook server listening on %s%s", cfg.Telegram.ListenAddr, cfg.Telegram.WebhookPath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("[FATAL] webhook server: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	default:
		go tn.StartPolling(ctx, dispatcher)
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] Q-Engine is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] Q-Engine stopped")
}

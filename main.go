package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cyleria_watcher/config"
	"cyleria_watcher/httputil"
	"cyleria_watcher/logging"
	"cyleria_watcher/notify"
	"cyleria_watcher/scheduler"
	"cyleria_watcher/scraper"
	"cyleria_watcher/server"
	"cyleria_watcher/services"
	"cyleria_watcher/storage"
)

var (
	refreshNow = flag.Bool("refresh", false, "Run one refresh and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile := logging.Setup(cfg.LogPath)
	defer logFile.Close()

	log.Println("Starting cyleria_watcher...")
	log.Printf("Watching %d notify cities, %d ignored prefixes",
		len(cfg.Watch.NotifyCities), len(cfg.Watch.IgnoredPrefixes))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store storage.Store
	if cfg.DatabaseURL != "" {
		store, err = storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		log.Println("Store: Postgres")
	} else {
		store, err = storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open SQLite: %v", err)
		}
		log.Printf("Store: SQLite (%s)", cfg.DBPath)
	}
	defer store.Close()

	clients := httputil.NewClients(cfg.Scraper.RequestTimeout)
	site := scraper.NewCyleriaClient(cfg.Watch, cfg.Scraper, clients.Scraping)
	pipeline := scraper.NewPipeline(site, site, store)

	if *refreshNow {
		log.Println("Running one-shot refresh...")
		if err := pipeline.RunRefresh(ctx); err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		log.Println("Refresh complete!")
		return
	}

	discord := notify.NewDiscord(cfg.WebhookURL, clients.Webhook)
	if discord == nil {
		log.Println("Warning: DISCORD_WEBHOOK_URL not set, notifications disabled")
	}
	evaluator := services.NewEvaluator(store, discord, cfg.Watch.NotifyCities)

	sched := scheduler.New(cfg.Scheduler, pipeline, evaluator, store)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	api := server.New(store, pipeline)
	go func() {
		log.Printf("API listening on %s", cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, api.Router()); err != nil {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

/**
 * @description
 * Worker Service Entry Point.
 * Runs the background job subsystem:
 * 1. Price polling (5s): external quotes -> cache + store + live broadcast.
 * 2. News ingest (15m): external feed -> dedup -> store -> cache invalidation.
 * 3. Prediction verification (60s): settle due predictions, votes and stats.
 * Also serves the websocket hub for live clients and a read-only job status
 * surface.
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/jobs
 * - backend/internal/marketdata
 * - backend/internal/newswire
 * - backend/internal/ws
 */

package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goldpulse/backend/internal/api"
	"github.com/goldpulse/backend/internal/cache"
	"github.com/goldpulse/backend/internal/config"
	"github.com/goldpulse/backend/internal/db"
	"github.com/goldpulse/backend/internal/jobs"
	"github.com/goldpulse/backend/internal/logger"
	"github.com/goldpulse/backend/internal/marketdata"
	"github.com/goldpulse/backend/internal/newswire"
	"github.com/goldpulse/backend/internal/notify"
	"github.com/goldpulse/backend/internal/store"
	"github.com/goldpulse/backend/internal/ws"
)

func main() {
	logger.Info("🔥 Starting GoldPulse Worker...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Connect DBs
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Postgres connection failed: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("Redis connection failed: %v", err)
	}

	// 3. Shared infrastructure
	hub := ws.NewHub()
	quoteCache := cache.New(redisClient)
	gateway := marketdata.NewClient(cfg)
	newsFeed := newswire.NewClient(cfg.News.BaseURL, cfg.News.APIKey)

	quoteStore := store.NewQuoteStore(pgDB)
	predictionStore := store.NewPredictionStore(pgDB)
	voteStore := store.NewVoteStore(pgDB)
	statsStore := store.NewUserStatsStore(pgDB)
	newsStore := store.NewNewsStore(pgDB)
	symbolStore := store.NewSymbolStore(pgDB)
	notifier := notify.NewNotifier(pgDB, hub)

	// 4. Background jobs
	symbolSource := jobs.FallbackSymbolSource{
		Primary:  symbolStore,
		Fallback: jobs.StaticSymbols(cfg.Jobs.PollSymbols),
	}

	manager := jobs.NewManager(
		jobs.NewPricePollJob(cfg.Jobs.PricePollInterval, symbolSource, gateway, quoteCache, quoteStore, hub),
		jobs.NewNewsIngestJob(cfg.Jobs.NewsInterval, cfg.News.Categories, newsFeed, newsStore, quoteCache),
		jobs.NewVerifyJob(cfg.Jobs.VerifyInterval, predictionStore, voteStore, statsStore, gateway, hub, notifier),
	)
	manager.StartAll()

	// 5. WebSocket listener for live clients
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", hub.Handler())
	wsServer := &http.Server{Addr: ":" + cfg.Server.WSPort, Handler: wsMux}
	go func() {
		logger.Info("WebSocket listener on :%s", cfg.Server.WSPort)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("❌ WebSocket listener failed: %v", err)
		}
	}()

	// 6. Job status surface
	statusApp := api.NewStatusApp(manager)
	go func() {
		logger.Info("Status surface on :%s", cfg.Server.Port)
		if err := statusApp.Listen(":" + cfg.Server.Port); err != nil {
			logger.Error("❌ Status surface failed: %v", err)
		}
	}()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	manager.StopAll()

	if err := statusApp.Shutdown(); err != nil {
		logger.Error("Error shutting down status surface: %v", err)
	}
	if err := wsServer.Close(); err != nil {
		logger.Error("Error closing WebSocket listener: %v", err)
	}

	time.Sleep(1 * time.Second) // Give connections time to close
	logger.Info("Worker exited.")
}

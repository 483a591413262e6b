package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"media-vault/internal/database"
	"media-vault/internal/events"
	"media-vault/internal/handlers"
	"media-vault/internal/indexer"
	"media-vault/internal/logging"
	"media-vault/internal/memory"
	"media-vault/internal/metrics"
	"media-vault/internal/middleware"
	"media-vault/internal/scanner"
	"media-vault/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	memory.ConfigureFromEnv()

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize prober and event hub
	prober := scanner.NewProber(config.FFprobePath)
	startup.LogProberInit(prober.Available())

	hub := events.NewHub()

	// Initialize indexer
	hashMode := indexer.HashFast
	if config.FullHash {
		hashMode = indexer.HashFull
	}
	idx := indexer.New(db, indexer.Config{
		Prober:   prober,
		Hub:      hub,
		HashMode: hashMode,
	})

	// Schedule periodic rescans
	startup.LogIndexerInit(config.RescanSchedule)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(config.RescanSchedule, func() {
		if _, err := idx.ScanLibrary(config.MediaDirs); err != nil {
			logging.Error("Scheduled scan failed: %v", err)
		}
	}); err != nil {
		startup.LogFatal("Invalid RESCAN_SCHEDULE %q: %v", config.RescanSchedule, err)
	}
	scheduler.Start()
	startup.LogIndexerStarted()

	// Initial scan in the background
	go func() {
		if _, err := idx.ScanLibrary(config.MediaDirs); err != nil {
			logging.Error("Initial scan failed: %v", err)
		}
	}()

	// Metrics
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.GoVersion)
		collector = metrics.NewCollector(&catalogStats{db: db}, config.DatabasePath, 30*time.Second)
		collector.Start()
	}

	// Router and middleware
	h := handlers.New(db, idx, hub, config)
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	startup.LogHTTPRoutes(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streams run long; per-write deadlines bound them
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, scheduler, collector, hub)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// catalogStats adapts the database to the metrics collector.
type catalogStats struct {
	db *database.Database
}

func (c *catalogStats) GetStats() metrics.Stats {
	stats := metrics.Stats{FilesByKind: map[string]int64{}}

	if library, err := c.db.GetLibraryStats(); err == nil {
		stats.FilesByKind = library.ByKind
		stats.Missing = library.MissingFiles
	}
	if playlists, err := c.db.GetPlaylists(); err == nil {
		stats.Playlists = int64(len(playlists))
	}
	if collections, err := c.db.GetCollections(); err == nil {
		stats.Collections = int64(len(collections))
	}
	return stats
}

func handleShutdown(srv, metricsSrv *http.Server, scheduler *cron.Cron, collector *metrics.Collector, hub *events.Hub) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("rescan scheduler")
	<-scheduler.Stop().Done()
	startup.LogShutdownStepComplete("rescan scheduler")

	if collector != nil {
		startup.LogShutdownStep("metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("metrics collector")
	}

	startup.LogShutdownStep("event hub")
	hub.Close()
	startup.LogShutdownStepComplete("event hub")

	if metricsSrv != nil {
		startup.LogShutdownStep("metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
		startup.LogShutdownStepComplete("metrics server")
	}

	startup.LogShutdownStep("HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}
	startup.LogShutdownStepComplete("HTTP server")

	startup.LogShutdownComplete()
}

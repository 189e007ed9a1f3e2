package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/darwin242209/LuminaTiktok/internal/api"
	"github.com/darwin242209/LuminaTiktok/internal/api/handler"
	"github.com/darwin242209/LuminaTiktok/internal/config"
	"github.com/darwin242209/LuminaTiktok/internal/delivery"
	"github.com/darwin242209/LuminaTiktok/internal/downloader"
	"github.com/darwin242209/LuminaTiktok/internal/extractor"
	"github.com/darwin242209/LuminaTiktok/internal/repository"
	"github.com/darwin242209/LuminaTiktok/internal/service"
	"github.com/darwin242209/LuminaTiktok/internal/session"
	"github.com/darwin242209/LuminaTiktok/internal/transcoder"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("luminatiktok %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Local overrides from .env, if present
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting luminatiktok",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure storage directories exist
	if err := os.MkdirAll(cfg.Storage.WorkPath, 0o755); err != nil {
		logger.Error("failed to create work directory", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Job history store
	jobRepo, err := repository.NewSQLiteJobRepository(cfg.JobsDBPath())
	if err != nil {
		logger.Error("failed to open job store", "error", err)
		os.Exit(1)
	}
	defer jobRepo.Close()

	// Messaging session
	ctx := context.Background()
	wa, err := session.NewWhatsApp(ctx, cfg.WhatsApp, cfg.SessionDBPath(), logger)
	if err != nil {
		logger.Error("failed to initialize whatsapp session", "error", err)
		os.Exit(1)
	}
	if err := wa.Connect(ctx); err != nil {
		logger.Error("failed to connect whatsapp session", "error", err)
		os.Exit(1)
	}
	defer wa.Close()

	// Pipeline stages
	ex := extractor.NewHTTPClient(cfg.Extractor)
	dl := downloader.NewHTTPDownloader(cfg.Download)
	tc, err := transcoder.NewProcessor(cfg.Transcode, logger)
	if err != nil {
		logger.Error("failed to initialize transcoder", "error", err)
		os.Exit(1)
	}
	dv := delivery.NewAdapter(wa, logger)

	pipeline := service.NewPipeline(ex, dl, tc, dv, jobRepo, cfg.Storage, cfg.Pipeline, logger)

	// Handlers and router
	videoHandler := handler.NewVideoHandler(pipeline, cfg.Pipeline.Timeout, logger)
	jobsHandler := handler.NewJobsHandler(jobRepo, logger)
	healthHandler := handler.NewHealthHandler(jobRepo, wa)

	router := api.NewRouter(videoHandler, jobsHandler, healthHandler, cfg.Server.RateLimit, logger)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

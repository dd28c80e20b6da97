package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/longscribe/internal/api"
	"github.com/nikhilbhutani/longscribe/internal/audio"
	"github.com/nikhilbhutani/longscribe/internal/config"
	"github.com/nikhilbhutani/longscribe/internal/database"
	"github.com/nikhilbhutani/longscribe/internal/stt"
	"github.com/nikhilbhutani/longscribe/internal/transcriber"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database connection (optional — usage accounting only)
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without usage accounting", "error", err)
		db = nil
	} else {
		defer db.Close()
		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	provider, err := stt.NewFromConfig(cfg.STT)
	if err != nil {
		slog.Error("failed to build STT backend", "error", err)
		os.Exit(1)
	}

	svc := transcriber.NewService(
		audio.NewProber(cfg.Media.FFprobePath),
		audio.NewSplitter(cfg.Media.FFmpegPath, cfg.Media.TmpDir),
		provider,
		transcriber.Options{
			ChunkDuration: cfg.Transcribe.ChunkDuration,
			Language:      cfg.Transcribe.Language,
			Temperature:   cfg.Transcribe.Temperature,
			ContextChars:  cfg.Transcribe.ContextChars,
			Preamble:      cfg.Transcribe.Preamble,
		},
	)

	router := api.NewRouter(db, rdb, cfg, svc)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // sync transcriptions can run long
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "stt_backend", provider.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

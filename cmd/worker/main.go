package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/longscribe/internal/audio"
	"github.com/nikhilbhutani/longscribe/internal/config"
	"github.com/nikhilbhutani/longscribe/internal/database"
	"github.com/nikhilbhutani/longscribe/internal/jobs"
	"github.com/nikhilbhutani/longscribe/internal/queue"
	"github.com/nikhilbhutani/longscribe/internal/queue/workers"
	"github.com/nikhilbhutani/longscribe/internal/stt"
	"github.com/nikhilbhutani/longscribe/internal/transcriber"
	"github.com/nikhilbhutani/longscribe/internal/usage"
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

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without usage accounting", "error", err)
		db = nil
	} else {
		defer db.Close()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
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

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Each run is strictly sequential internally; concurrency here
			// only controls how many independent jobs run at once.
			Concurrency: 2,
		},
	)

	store := jobs.NewStore(rdb, 0)
	worker := workers.NewTranscriptionWorker(svc, store, usage.NewRecorder(db), cfg.STT.Model)

	mux := asynq.NewServeMux()
	mux.Handle(queue.TypeTranscriptionRun, asynq.HandlerFunc(worker.ProcessTask))

	slog.Info("starting worker", "stt_backend", provider.Name())
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}

package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/longscribe/internal/queue"
	"github.com/nikhilbhutani/longscribe/internal/transcriber"
	"github.com/nikhilbhutani/longscribe/internal/usage"
)

// Runner executes one transcription run and reports the probed source
// metadata alongside the result.
type Runner interface {
	TranscribeWithInfo(ctx context.Context, path string) (*transcriber.Transcript, *transcriber.RunInfo, error)
}

// JobStore is the slice of the job store the worker drives.
type JobStore interface {
	MarkRunning(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, result *transcriber.Transcript) error
	Fail(ctx context.Context, id string, cause error) error
}

// UsageLog accepts per-run accounting records.
type UsageLog interface {
	Log(ctx context.Context, rec usage.Record) error
}

// TranscriptionWorker runs queued transcription jobs through the stitcher and
// records their outcome on the job store.
type TranscriptionWorker struct {
	runner Runner
	store  JobStore
	usage  UsageLog
	model  string
}

func NewTranscriptionWorker(runner Runner, store JobStore, log UsageLog, model string) *TranscriptionWorker {
	return &TranscriptionWorker{runner: runner, store: store, usage: log, model: model}
}

func (w *TranscriptionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranscriptionRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("processing transcription", "job_id", payload.JobID, "source", payload.SourcePath)

	if err := w.store.MarkRunning(ctx, payload.JobID); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	start := time.Now()
	result, info, err := w.runner.TranscribeWithInfo(ctx, payload.SourcePath)
	latency := time.Since(start)

	if err != nil {
		slog.Error("transcription failed", "job_id", payload.JobID, "error", err)
		if storeErr := w.store.Fail(ctx, payload.JobID, err); storeErr != nil {
			slog.Error("failed to record job failure", "job_id", payload.JobID, "error", storeErr)
		}
		w.record(ctx, payload, result, info, latency, err)
		return fmt.Errorf("transcribe %s: %w", payload.SourcePath, err)
	}

	if err := w.store.Complete(ctx, payload.JobID, result); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	w.record(ctx, payload, result, info, latency, nil)

	slog.Info("transcription completed",
		"job_id", payload.JobID,
		"segments", len(result.Chunks),
		"latency_ms", latency.Milliseconds(),
	)
	return nil
}

func (w *TranscriptionWorker) record(ctx context.Context, payload queue.TranscriptionRunPayload, result *transcriber.Transcript, info *transcriber.RunInfo, latency time.Duration, runErr error) {
	if w.usage == nil {
		return
	}
	rec := usage.Record{
		JobID:      payload.JobID,
		SourcePath: payload.SourcePath,
		Model:      w.model,
		LatencyMs:  latency.Milliseconds(),
		Status:     "completed",
	}
	// info survives failed runs once the source has been probed.
	if info != nil {
		rec.MIMEType = info.MIMEType
		rec.DurationS = info.DurationS
		rec.ChunkCount = info.ChunkCount
	}
	if runErr != nil {
		rec.Status = "failed"
	} else if result != nil {
		rec.Segments = len(result.Chunks)
		rec.Language = result.Language
	}
	if err := w.usage.Log(ctx, rec); err != nil {
		slog.Error("failed to record usage", "job_id", payload.JobID, "error", err)
	}
}

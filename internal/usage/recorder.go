package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one transcription run's accounting row. It carries metadata only,
// never transcript text.
type Record struct {
	JobID      string
	SourcePath string
	MIMEType   string
	DurationS  float64
	ChunkCount int
	Segments   int
	Model      string
	Language   string
	LatencyMs  int64
	Status     string
}

// Recorder writes per-run accounting rows to Postgres. A nil pool disables
// recording; the service runs fine without a database.
type Recorder struct {
	db *pgxpool.Pool
}

func NewRecorder(db *pgxpool.Pool) *Recorder {
	if db == nil {
		return nil
	}
	return &Recorder{db: db}
}

func (r *Recorder) Log(ctx context.Context, rec Record) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO transcription_runs (job_id, source_path, mime_type, duration_s, chunk_count, segments, model, language, latency_ms, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.JobID, rec.SourcePath, rec.MIMEType, rec.DurationS, rec.ChunkCount,
		rec.Segments, rec.Model, rec.Language, rec.LatencyMs, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("insert transcription run: %w", err)
	}
	return nil
}

// Summary aggregates recent runs for the admin usage endpoint.
type Summary struct {
	Runs         int     `json:"runs"`
	Completed    int     `json:"completed"`
	Failed       int     `json:"failed"`
	AudioSeconds float64 `json:"audio_seconds"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

func (r *Recorder) Usage(ctx context.Context, since time.Time) (*Summary, error) {
	if r == nil || r.db == nil {
		return &Summary{}, nil
	}
	var s Summary
	err := r.db.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE status = 'completed'),
		        count(*) FILTER (WHERE status = 'failed'),
		        coalesce(sum(duration_s), 0),
		        coalesce(avg(latency_ms), 0)
		 FROM transcription_runs WHERE created_at >= $1`,
		since,
	).Scan(&s.Runs, &s.Completed, &s.Failed, &s.AudioSeconds, &s.AvgLatencyMs)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	return &s, nil
}

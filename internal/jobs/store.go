package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/longscribe/internal/transcriber"
)

// ErrNotFound reports an unknown or expired job ID.
var ErrNotFound = errors.New("job not found")

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job tracks one asynchronous transcription run. Completed results are held
// only until the TTL expires; this is a delivery buffer, not an archive.
type Job struct {
	ID         string                  `json:"id"`
	SourcePath string                  `json:"source_path"`
	Status     Status                  `json:"status"`
	Error      string                  `json:"error,omitempty"`
	Result     *transcriber.Transcript `json:"result,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// Store keeps job state in Redis with a bounded lifetime.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(id string) string { return "transcription:job:" + id }

// Create registers a new pending job and returns it.
func (s *Store) Create(ctx context.Context, sourcePath string) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.put(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get fetches a job by ID.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	val, err := s.client.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

func (j *Job) markRunning() {
	j.Status = StatusRunning
}

func (j *Job) complete(result *transcriber.Transcript) {
	j.Status = StatusCompleted
	j.Result = result
	j.Error = ""
}

// fail discards any partial result; a failed run keeps only its cause.
func (j *Job) fail(cause error) {
	j.Status = StatusFailed
	j.Result = nil
	j.Error = cause.Error()
}

// MarkRunning transitions a job to running.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, (*Job).markRunning)
}

// Complete stores the finished transcript on the job.
func (s *Store) Complete(ctx context.Context, id string, result *transcriber.Transcript) error {
	return s.update(ctx, id, func(j *Job) { j.complete(result) })
}

// Fail records a failed run. No partial result is kept.
func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	return s.update(ctx, id, func(j *Job) { j.fail(cause) })
}

func (s *Store) update(ctx context.Context, id string, apply func(*Job)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	apply(job)
	job.UpdatedAt = time.Now().UTC()
	return s.put(ctx, job)
}

func (s *Store) put(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, key(job.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

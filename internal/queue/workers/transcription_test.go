package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/longscribe/internal/queue"
	"github.com/nikhilbhutani/longscribe/internal/transcriber"
	"github.com/nikhilbhutani/longscribe/internal/usage"
)

type fakeRunner struct {
	result *transcriber.Transcript
	info   *transcriber.RunInfo
	err    error
}

func (f *fakeRunner) TranscribeWithInfo(ctx context.Context, path string) (*transcriber.Transcript, *transcriber.RunInfo, error) {
	return f.result, f.info, f.err
}

type fakeJobStore struct {
	transitions []string
	failCause   error
	completed   *transcriber.Transcript
}

func (f *fakeJobStore) MarkRunning(ctx context.Context, id string) error {
	f.transitions = append(f.transitions, "running")
	return nil
}

func (f *fakeJobStore) Complete(ctx context.Context, id string, result *transcriber.Transcript) error {
	f.transitions = append(f.transitions, "completed")
	f.completed = result
	return nil
}

func (f *fakeJobStore) Fail(ctx context.Context, id string, cause error) error {
	f.transitions = append(f.transitions, "failed")
	f.failCause = cause
	return nil
}

type fakeUsageLog struct {
	records []usage.Record
}

func (f *fakeUsageLog) Log(ctx context.Context, rec usage.Record) error {
	f.records = append(f.records, rec)
	return nil
}

func runTask(t *testing.T, w *TranscriptionWorker) error {
	t.Helper()
	data, err := json.Marshal(queue.TranscriptionRunPayload{JobID: "job-1", SourcePath: "/audio/conf.wav"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeTranscriptionRun, data))
}

func TestProcessTask(t *testing.T) {
	runErr := errors.New("backend unavailable")
	info := &transcriber.RunInfo{
		SourcePath: "/audio/conf.wav",
		MIMEType:   "audio/wav",
		DurationS:  1500,
		ChunkCount: 3,
	}

	tests := []struct {
		name            string
		runner          *fakeRunner
		wantErr         bool
		wantTransitions []string
		wantStatus      string
	}{
		{
			name: "completed run",
			runner: &fakeRunner{
				result: &transcriber.Transcript{Text: " bonjour.", Chunks: []transcriber.Chunk{{Text: " bonjour."}}, Language: "fr"},
				info:   info,
			},
			wantTransitions: []string{"running", "completed"},
			wantStatus:      "completed",
		},
		{
			name:            "failed run",
			runner:          &fakeRunner{info: info, err: runErr},
			wantErr:         true,
			wantTransitions: []string{"running", "failed"},
			wantStatus:      "failed",
		},
		{
			name:            "failed before probing",
			runner:          &fakeRunner{err: runErr},
			wantErr:         true,
			wantTransitions: []string{"running", "failed"},
			wantStatus:      "failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeJobStore{}
			log := &fakeUsageLog{}
			w := NewTranscriptionWorker(tt.runner, store, log, "whisper-1")

			err := runTask(t, w)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProcessTask() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, runErr) {
				t.Errorf("error %v does not wrap the run error", err)
			}

			if len(store.transitions) != len(tt.wantTransitions) {
				t.Fatalf("transitions = %v, want %v", store.transitions, tt.wantTransitions)
			}
			for i, tr := range tt.wantTransitions {
				if store.transitions[i] != tr {
					t.Errorf("transition %d = %q, want %q", i, store.transitions[i], tr)
				}
			}
			if tt.wantErr && store.failCause == nil {
				t.Error("Fail was not given the run error")
			}
			if !tt.wantErr && store.completed == nil {
				t.Error("Complete was not given the transcript")
			}

			if len(log.records) != 1 {
				t.Fatalf("usage records = %d, want 1", len(log.records))
			}
			rec := log.records[0]
			if rec.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", rec.Status, tt.wantStatus)
			}
			if rec.JobID != "job-1" || rec.SourcePath != "/audio/conf.wav" || rec.Model != "whisper-1" {
				t.Errorf("record identity = %+v", rec)
			}
			if tt.runner.info != nil {
				if rec.MIMEType != "audio/wav" || rec.DurationS != 1500 || rec.ChunkCount != 3 {
					t.Errorf("source metadata not recorded: %+v", rec)
				}
			} else if rec.DurationS != 0 || rec.ChunkCount != 0 {
				t.Errorf("unprobed run carries metadata: %+v", rec)
			}
			if !tt.wantErr && rec.Segments != 1 {
				t.Errorf("Segments = %d, want 1", rec.Segments)
			}
		})
	}
}

func TestProcessTaskBadPayload(t *testing.T) {
	w := NewTranscriptionWorker(&fakeRunner{}, &fakeJobStore{}, &fakeUsageLog{}, "whisper-1")
	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeTranscriptionRun, []byte("{bad")))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

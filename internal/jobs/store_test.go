package jobs

import (
	"errors"
	"testing"

	"github.com/nikhilbhutani/longscribe/internal/transcriber"
)

func TestJobTransitions(t *testing.T) {
	j := &Job{ID: "j1", SourcePath: "/audio/conf.wav", Status: StatusPending}

	j.markRunning()
	if j.Status != StatusRunning {
		t.Fatalf("Status = %q, want running", j.Status)
	}

	result := &transcriber.Transcript{Text: " bonjour.", Language: "fr"}
	j.complete(result)
	if j.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", j.Status)
	}
	if j.Result != result {
		t.Error("completed job does not carry the transcript")
	}
	if j.Error != "" {
		t.Errorf("Error = %q, want empty", j.Error)
	}
}

func TestJobFailDiscardsResult(t *testing.T) {
	j := &Job{
		ID:     "j1",
		Status: StatusRunning,
		Result: &transcriber.Transcript{Text: " partiel."},
	}

	j.fail(errors.New("transcribe chunk 2/3 of conf.wav: backend unavailable"))

	if j.Status != StatusFailed {
		t.Errorf("Status = %q, want failed", j.Status)
	}
	if j.Result != nil {
		t.Error("failed job still carries a result")
	}
	if j.Error == "" {
		t.Error("failed job has no error message")
	}
}

func TestJobCompleteClearsError(t *testing.T) {
	j := &Job{ID: "j1", Status: StatusRunning, Error: "earlier failure"}

	j.complete(&transcriber.Transcript{Text: " ok."})
	if j.Error != "" {
		t.Errorf("Error = %q, want cleared", j.Error)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikhilbhutani/longscribe/internal/audio"
	"github.com/nikhilbhutani/longscribe/internal/stt"
	"github.com/nikhilbhutani/longscribe/internal/transcriber"
)

type fakeTranscriber struct {
	result *transcriber.Transcript
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (*transcriber.Transcript, error) {
	return f.result, f.err
}

func postSync(h *TranscriptionHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/transcriptions/sync", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Sync(rec, req)
	return rec
}

func TestSyncTranscribe(t *testing.T) {
	h := NewTranscriptionHandler(&fakeTranscriber{result: &transcriber.Transcript{
		Text:     " bonjour.",
		Chunks:   []transcriber.Chunk{{Timestamp: [2]float64{0, 2.5}, Text: " bonjour."}},
		Language: "fr",
	}}, nil, nil)

	rec := postSync(h, `{"file_path": "/tmp/talk.mp3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got transcriber.Transcript
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Text != " bonjour." || got.Language != "fr" || len(got.Chunks) != 1 {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSyncValidation(t *testing.T) {
	h := NewTranscriptionHandler(&fakeTranscriber{}, nil, nil)

	if rec := postSync(h, `{"file_path": ""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty file_path: status = %d, want 400", rec.Code)
	}
	if rec := postSync(h, `{bad json`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d, want 400", rec.Code)
	}
}

func TestSyncErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing source", audio.ErrSourceNotFound, http.StatusNotFound},
		{"unsupported format", audio.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"undecodable", audio.ErrInvalidAudio, http.StatusUnsupportedMediaType},
		{"backend failure", &transcriber.ChunkError{
			Source: "x.mp3", Index: 1, Total: 3,
			Err: &stt.BackendError{Status: 500, Message: "boom"},
		}, http.StatusBadGateway},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTranscriptionHandler(&fakeTranscriber{err: tt.err}, nil, nil)
			if rec := postSync(h, `{"file_path": "/tmp/talk.mp3"}`); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

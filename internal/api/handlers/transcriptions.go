package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/longscribe/internal/audio"
	"github.com/nikhilbhutani/longscribe/internal/jobs"
	"github.com/nikhilbhutani/longscribe/internal/queue"
	"github.com/nikhilbhutani/longscribe/internal/stt"
	"github.com/nikhilbhutani/longscribe/internal/transcriber"
)

// Transcriber runs one full transcription synchronously.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*transcriber.Transcript, error)
}

type TranscriptionHandler struct {
	svc   Transcriber
	store *jobs.Store
	queue *queue.Client
}

func NewTranscriptionHandler(svc Transcriber, store *jobs.Store, qc *queue.Client) *TranscriptionHandler {
	return &TranscriptionHandler{svc: svc, store: store, queue: qc}
}

type submitRequest struct {
	FilePath string `json:"file_path"`
}

// Submit enqueues an asynchronous transcription job and returns its ID.
func (h *TranscriptionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FilePath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_path required"})
		return
	}

	job, err := h.store.Create(r.Context(), req.FilePath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := h.queue.EnqueueTranscriptionRun(queue.TranscriptionRunPayload{
		JobID:      job.ID,
		SourcePath: req.FilePath,
	}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

// Get returns the status of a job, including the transcript once completed.
func (h *TranscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Sync transcribes a file in the request/response cycle. Only suitable for
// short recordings; long files should go through Submit.
func (h *TranscriptionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FilePath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_path required"})
		return
	}

	result, err := h.svc.Transcribe(r.Context(), req.FilePath)
	if err != nil {
		writeJSON(w, transcriptionStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func transcriptionStatus(err error) int {
	var backendErr *stt.BackendError
	switch {
	case errors.Is(err, audio.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, audio.ErrUnsupportedFormat), errors.Is(err, audio.ErrInvalidAudio):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &backendErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

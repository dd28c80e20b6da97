package stt

import (
	"context"
	"fmt"
)

// Segment is one timestamped span of recognized speech. Start and End are
// seconds relative to the start of the submitted clip. Confidence metadata is
// carried through from the backend unmodified.
type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	AvgLogprob   float64 `json:"avg_logprob,omitempty"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// TranscriptionRequest holds the parameters for transcribing one short clip.
type TranscriptionRequest struct {
	FilePath    string  `json:"file_path"`
	MIMEType    string  `json:"mime_type,omitempty"`
	Language    string  `json:"language,omitempty"`
	Prompt      string  `json:"prompt,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// TranscriptionResponse holds the transcription result for one clip.
type TranscriptionResponse struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// STTProvider is the interface for speech-to-text backends. Implementations
// issue exactly one synchronous request per call and do not retry; failures
// propagate to the caller.
type STTProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

// BackendError reports a non-success response from a transcription backend.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transcription backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("transcription backend error: %s", e.Message)
}

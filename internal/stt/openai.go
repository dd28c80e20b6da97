package stt

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISTTConfig holds configuration for an OpenAI-compatible STT backend.
type OpenAISTTConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
}

// OpenAISTT transcribes audio via the Whisper audio/transcriptions endpoint
// (or any server speaking the same protocol). Responses are requested as
// verbose_json with segment-level timestamps.
type OpenAISTT struct {
	cfg    OpenAISTTConfig
	client *openai.Client
}

// NewOpenAISTT creates an OpenAISTT with sensible defaults applied.
func NewOpenAISTT(cfg OpenAISTTConfig) *OpenAISTT {
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAISTT{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (o *OpenAISTT) Name() string { return "openai-whisper" }

func (o *OpenAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	audioReq := openai.AudioRequest{
		Model:       o.cfg.Model,
		FilePath:    req.FilePath,
		Language:    req.Language,
		Prompt:      req.Prompt,
		Temperature: float32(req.Temperature),
		Format:      openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	}

	resp, err := o.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &BackendError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, Segment{
			Start:        s.Start,
			End:          s.End,
			Text:         s.Text,
			AvgLogprob:   s.AvgLogprob,
			NoSpeechProb: s.NoSpeechProb,
		})
	}

	return &TranscriptionResponse{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
		Segments: segments,
	}, nil
}

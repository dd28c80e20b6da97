package stt

import (
	"fmt"

	"github.com/nikhilbhutani/longscribe/internal/config"
)

// NewFromConfig selects and constructs the configured STT backend.
func NewFromConfig(cfg config.STTConfig) (STTProvider, error) {
	switch cfg.Backend {
	case "openai", "":
		return NewOpenAISTT(OpenAISTTConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	case "local":
		return NewLocalSTT(LocalSTTConfig{
			BaseURL: cfg.LocalBaseURL,
			Model:   cfg.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown STT backend: %s", cfg.Backend)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("STT_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Transcribe.ChunkDuration != 10*time.Minute {
		t.Errorf("ChunkDuration = %s, want 10m", cfg.Transcribe.ChunkDuration)
	}
	if cfg.Transcribe.Language != "fr" {
		t.Errorf("Language = %q, want fr", cfg.Transcribe.Language)
	}
	if cfg.Transcribe.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Transcribe.Temperature)
	}
	if cfg.Transcribe.ContextChars != 500 {
		t.Errorf("ContextChars = %d, want 500", cfg.Transcribe.ContextChars)
	}
	if cfg.Transcribe.Preamble == "" {
		t.Error("Preamble should have a default")
	}
	if cfg.STT.Model != "whisper-1" {
		t.Errorf("Model = %q, want whisper-1", cfg.STT.Model)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRANSCRIBE_CHUNK_DURATION", "5m")
	t.Setenv("TRANSCRIBE_LANGUAGE", "en")
	t.Setenv("API_KEYS", "k1, k2,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Transcribe.ChunkDuration != 5*time.Minute {
		t.Errorf("ChunkDuration = %s, want 5m", cfg.Transcribe.ChunkDuration)
	}
	if cfg.Transcribe.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Transcribe.Language)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[0] != "k1" || cfg.Auth.APIKeys[1] != "k2" {
		t.Errorf("APIKeys = %v, want [k1 k2]", cfg.Auth.APIKeys)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("TRANSCRIBE_CHUNK_DURATION", "ten minutes")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("STT_BACKEND", "openai")
	t.Setenv("STT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing STT_API_KEY error")
	}

	cfg.STT.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Transcribe.ChunkDuration = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero chunk duration")
	}
}

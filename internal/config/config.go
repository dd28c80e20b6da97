package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	STT        STTConfig
	Transcribe TranscribeConfig
	Media      MediaConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type AuthConfig struct {
	JWTSecret    string
	APIKeyHeader string
	APIKeys      []string
}

type STTConfig struct {
	Backend      string // "openai" or "local"
	APIKey       string
	BaseURL      string
	Model        string
	LocalBaseURL string // default: "http://localhost:8178"
}

type TranscribeConfig struct {
	ChunkDuration time.Duration
	Language      string
	Temperature   float64
	ContextChars  int
	Preamble      string
}

type MediaConfig struct {
	FFmpegPath  string
	FFprobePath string
	TmpDir      string
}

// DefaultPreamble primes the Whisper decoder with the expected register and
// language of the recording. Overridable via TRANSCRIBE_PREAMBLE.
const DefaultPreamble = "Bonjour. Voici la transcription d'un enregistrement audio en français. "

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	chunkDur, err := getEnvDuration("TRANSCRIBE_CHUNK_DURATION", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCRIBE_CHUNK_DURATION: %w", err)
	}

	temperature, err := getEnvFloat("TRANSCRIBE_TEMPERATURE", 0.2)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCRIBE_TEMPERATURE: %w", err)
	}

	contextChars, err := getEnvInt("TRANSCRIBE_CONTEXT_CHARS", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCRIBE_CONTEXT_CHARS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
			APIKeys:      splitList(getEnv("API_KEYS", "")),
		},
		STT: STTConfig{
			Backend:      getEnv("STT_BACKEND", "openai"),
			APIKey:       getEnv("STT_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:      getEnv("STT_BASE_URL", ""),
			Model:        getEnv("STT_MODEL", "whisper-1"),
			LocalBaseURL: getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		Transcribe: TranscribeConfig{
			ChunkDuration: chunkDur,
			Language:      getEnv("TRANSCRIBE_LANGUAGE", "fr"),
			Temperature:   temperature,
			ContextChars:  contextChars,
			Preamble:      getEnv("TRANSCRIBE_PREAMBLE", DefaultPreamble),
		},
		Media: MediaConfig{
			FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
			TmpDir:      getEnv("MEDIA_TMP_DIR", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.STT.Backend == "openai" && c.STT.APIKey == "" {
		missing = append(missing, "STT_API_KEY")
	}
	if c.Transcribe.ChunkDuration <= 0 {
		return fmt.Errorf("TRANSCRIBE_CHUNK_DURATION must be positive")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

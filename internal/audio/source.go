package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrSourceNotFound reports that the input path does not resolve to a file.
	ErrSourceNotFound = errors.New("audio source not found")
	// ErrUnsupportedFormat reports that the container type cannot be determined.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrInvalidAudio reports a stream that cannot be decoded or has zero duration.
	ErrInvalidAudio = errors.New("invalid audio stream")
)

// Source is an immutable reference to a decodable audio file. It is created
// once per transcription run and never mutated afterwards.
type Source struct {
	Path     string
	MIMEType string
	Duration time.Duration
}

// Prober resolves an input path into a Source, failing fast on missing files,
// unknown container types, and undecodable streams.
type Prober struct {
	FFprobePath string
}

func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{FFprobePath: ffprobePath}
}

// Open validates the path and probes the stream duration via ffprobe.
func (p *Prober) Open(ctx context.Context, path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	mimeType, err := MIMEType(path)
	if err != nil {
		return nil, err
	}

	dur, err := p.probeDuration(ctx, path)
	if err != nil {
		return nil, err
	}
	if dur <= 0 {
		return nil, fmt.Errorf("%w: %s has zero duration", ErrInvalidAudio, path)
	}

	return &Source{Path: path, MIMEType: mimeType, Duration: dur}, nil
}

func (p *Prober) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, p.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return 0, fmt.Errorf("%w: probe %s: %s", ErrInvalidAudio, path, msg)
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: probe %s: unparseable duration %q", ErrInvalidAudio, path, strings.TrimSpace(string(out)))
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// MIMEType guesses the container type from the file extension.
func MIMEType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	if t, ok := audioTypes[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Common audio extensions that the platform mime table misses or maps
// inconsistently across systems.
var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".webm": "audio/webm",
	".aac":  "audio/aac",
}

package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Span is one bounded-duration slice of a Source. Spans partition the full
// stream: span i starts at i*chunkDuration and the last span is truncated to
// whatever remains.
type Span struct {
	Index  int
	Start  time.Duration
	Length time.Duration
}

// Plan partitions [0, total) into consecutive non-overlapping spans of the
// given chunk duration. A total that is an exact multiple of the chunk
// duration produces no trailing empty span.
func Plan(total, chunk time.Duration) ([]Span, error) {
	if chunk <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %s", chunk)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: non-positive duration %s", ErrInvalidAudio, total)
	}

	var spans []Span
	for start := time.Duration(0); start < total; start += chunk {
		length := chunk
		if remaining := total - start; remaining < chunk {
			length = remaining
		}
		spans = append(spans, Span{Index: len(spans), Start: start, Length: length})
	}
	return spans, nil
}

// Splitter cuts a span of a Source into a temporary mono 16 kHz WAV file via
// ffmpeg. The returned cleanup must run as soon as the chunk has been sent to
// the backend, success or failure.
type Splitter struct {
	FFmpegPath string
	TmpDir     string
}

func NewSplitter(ffmpegPath, tmpDir string) *Splitter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Splitter{FFmpegPath: ffmpegPath, TmpDir: tmpDir}
}

func (s *Splitter) Cut(ctx context.Context, src *Source, span Span) (string, func(), error) {
	tmp, err := os.CreateTemp(s.TmpDir, "longscribe_chunk_*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("create chunk file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(path) }

	// ffmpeg -y -ss <start> -t <length> -i src -ac 1 -ar 16000 -f wav out
	cmd := exec.CommandContext(ctx, s.FFmpegPath,
		"-y", "-v", "error",
		"-ss", formatSeconds(span.Start),
		"-t", formatSeconds(span.Length),
		"-i", src.Path,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cleanup()
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", nil, fmt.Errorf("%w: cut chunk %d of %s: %s", ErrInvalidAudio, span.Index, src.Path, msg)
	}
	return path, cleanup, nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

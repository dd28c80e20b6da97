package transcriber

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nikhilbhutani/longscribe/internal/audio"
	"github.com/nikhilbhutani/longscribe/internal/stt"
)

// SourceOpener resolves an input path into a probed audio source.
type SourceOpener interface {
	Open(ctx context.Context, path string) (*audio.Source, error)
}

// ChunkCutter extracts one span of a source into a temporary clip. The
// returned cleanup releases the clip and must be called as soon as the span
// has been transcribed.
type ChunkCutter interface {
	Cut(ctx context.Context, src *audio.Source, span audio.Span) (string, func(), error)
}

// ProgressFunc receives informational per-chunk progress. It must not affect
// control flow and may be nil.
type ProgressFunc func(chunk, total int)

// Options control a transcription run.
type Options struct {
	ChunkDuration time.Duration
	Language      string
	Temperature   float64
	ContextChars  int
	Preamble      string
	Progress      ProgressFunc
}

func (o Options) withDefaults() Options {
	if o.ChunkDuration <= 0 {
		o.ChunkDuration = 10 * time.Minute
	}
	if o.Language == "" {
		o.Language = "fr"
	}
	if o.ContextChars <= 0 {
		o.ContextChars = 500
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.2
	}
	return o
}

// RunInfo summarizes the probed source of a run: what was transcribed, not
// what it said. It is available even when the run itself fails.
type RunInfo struct {
	SourcePath string
	MIMEType   string
	DurationS  float64
	ChunkCount int
}

// Service transcribes long audio by splitting it into fixed-duration chunks,
// sending each to the STT backend primed with trailing context from earlier
// chunks, and stitching the results onto one global timeline.
//
// Chunk processing is strictly sequential: chunk i+1's prompt depends on the
// accumulated text of all chunks up to i, so the loop cannot be parallelized
// without breaking the context invariant.
type Service struct {
	opener   SourceOpener
	cutter   ChunkCutter
	provider stt.STTProvider
	opts     Options
}

func NewService(opener SourceOpener, cutter ChunkCutter, provider stt.STTProvider, opts Options) *Service {
	return &Service{
		opener:   opener,
		cutter:   cutter,
		provider: provider,
		opts:     opts.withDefaults(),
	}
}

// Transcribe runs the full chunk loop for the audio file at path. Any chunk
// failure aborts the run; no partial transcript is returned.
func (s *Service) Transcribe(ctx context.Context, path string) (*Transcript, error) {
	result, _, err := s.TranscribeWithInfo(ctx, path)
	return result, err
}

// TranscribeWithInfo is Transcribe plus the probed source metadata, for
// callers that account for runs. The info is non-nil as soon as the source
// has been probed, including on failed runs.
func (s *Service) TranscribeWithInfo(ctx context.Context, path string) (*Transcript, *RunInfo, error) {
	src, err := s.opener.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	spans, err := audio.Plan(src.Duration, s.opts.ChunkDuration)
	if err != nil {
		return nil, nil, err
	}

	info := &RunInfo{
		SourcePath: path,
		MIMEType:   src.MIMEType,
		DurationS:  src.Duration.Seconds(),
		ChunkCount: len(spans),
	}

	combined := &Transcript{Language: s.opts.Language, Chunks: []Chunk{}}

	for _, span := range spans {
		if s.opts.Progress != nil {
			s.opts.Progress(span.Index+1, len(spans))
		}
		slog.Debug("processing chunk", "source", path, "chunk", span.Index+1, "total", len(spans))

		resp, err := s.transcribeSpan(ctx, src, span, s.prompt(combined.Text))
		if err != nil {
			return nil, info, &ChunkError{Source: path, Index: span.Index, Total: len(spans), Err: err}
		}

		// Re-anchor chunk-local timestamps into the global timeline. The
		// backend has no notion of the chunk's position in the larger file.
		offset := span.Start.Seconds()
		for _, seg := range resp.Segments {
			combined.Chunks = append(combined.Chunks, Chunk{
				Timestamp:    [2]float64{seg.Start + offset, seg.End + offset},
				Text:         seg.Text,
				AvgLogprob:   seg.AvgLogprob,
				NoSpeechProb: seg.NoSpeechProb,
			})
		}

		combined.Text += " " + strings.TrimSpace(resp.Text)
	}

	return combined, info, nil
}

func (s *Service) transcribeSpan(ctx context.Context, src *audio.Source, span audio.Span, prompt string) (*stt.TranscriptionResponse, error) {
	clipPath, cleanup, err := s.cutter.Cut(ctx, src, span)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return s.provider.Transcribe(ctx, stt.TranscriptionRequest{
		FilePath:    clipPath,
		MIMEType:    "audio/wav",
		Language:    s.opts.Language,
		Prompt:      prompt,
		Temperature: s.opts.Temperature,
	})
}

// prompt builds the priming string for the next chunk: the fixed preamble
// plus the trailing ContextChars characters of the accumulated text. The
// tail is taken at use time, not at store time.
func (s *Service) prompt(accumulated string) string {
	p := s.opts.Preamble
	if accumulated != "" {
		p += "Contexte précédent: " + tail(accumulated, s.opts.ContextChars)
	}
	return p
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

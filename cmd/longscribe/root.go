package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/longscribe/internal/audio"
	"github.com/nikhilbhutani/longscribe/internal/config"
	"github.com/nikhilbhutani/longscribe/internal/stt"
	"github.com/nikhilbhutani/longscribe/internal/transcriber"
)

func newRootCommand() *cobra.Command {
	var (
		outPath  string
		chunkDur time.Duration
		language string
		textOnly bool
	)

	rootCmd := &cobra.Command{
		Use:           "longscribe <audio-file>",
		Short:         "Transcribe a long audio file in chunks through a Whisper backend",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			slog.SetDefault(logger)

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if chunkDur > 0 {
				cfg.Transcribe.ChunkDuration = chunkDur
			}
			if language != "" {
				cfg.Transcribe.Language = language
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			provider, err := stt.NewFromConfig(cfg.STT)
			if err != nil {
				return err
			}

			svc := transcriber.NewService(
				audio.NewProber(cfg.Media.FFprobePath),
				audio.NewSplitter(cfg.Media.FFmpegPath, cfg.Media.TmpDir),
				provider,
				transcriber.Options{
					ChunkDuration: cfg.Transcribe.ChunkDuration,
					Language:      cfg.Transcribe.Language,
					Temperature:   cfg.Transcribe.Temperature,
					ContextChars:  cfg.Transcribe.ContextChars,
					Preamble:      cfg.Transcribe.Preamble,
					Progress: func(chunk, total int) {
						fmt.Fprintf(os.Stderr, "Processing chunk %d/%d...\n", chunk, total)
					},
				},
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := svc.Transcribe(ctx, args[0])
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			if textOnly {
				fmt.Fprintln(out, result.Text)
				return nil
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	rootCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the result to a file instead of stdout")
	rootCmd.Flags().DurationVar(&chunkDur, "chunk-duration", 0, "Chunk duration (default from TRANSCRIBE_CHUNK_DURATION, 10m)")
	rootCmd.Flags().StringVarP(&language, "language", "l", "", "Target language code (default from TRANSCRIBE_LANGUAGE, fr)")
	rootCmd.Flags().BoolVar(&textOnly, "text", false, "Print only the transcript text, without timestamps")

	return rootCmd
}

package transcriber

import "fmt"

// ChunkError reports a failed chunk transcription. A single failed chunk
// invalidates the whole run, since later chunks' context depends on its text.
type ChunkError struct {
	Source string
	Index  int
	Total  int
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("transcribe chunk %d/%d of %s: %v", e.Index+1, e.Total, e.Source, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

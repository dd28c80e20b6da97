package queue

const (
	TypeTranscriptionRun = "transcription:run"
)

type TranscriptionRunPayload struct {
	JobID      string `json:"job_id"`
	SourcePath string `json:"source_path"`
}

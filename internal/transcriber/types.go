package transcriber

// Chunk is one timestamped span of the combined transcript, in global time
// relative to the start of the original audio. The serialized field layout
// (`timestamp` pair, `text`) is relied on by existing consumers.
type Chunk struct {
	Timestamp    [2]float64 `json:"timestamp"`
	Text         string     `json:"text"`
	AvgLogprob   float64    `json:"avg_logprob,omitempty"`
	NoSpeechProb float64    `json:"no_speech_prob,omitempty"`
}

// Transcript is the combined result of a full transcription run. The field
// named `chunks` holds the segment list.
type Transcript struct {
	Text     string  `json:"text"`
	Chunks   []Chunk `json:"chunks"`
	Language string  `json:"language"`
}

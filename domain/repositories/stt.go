package repositories

import "context"

// RecognizedWord is one word of a transcription together with the
// recognizer's confidence in it.
type RecognizedWord struct {
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
}

// Transcription is a speech recognition result. Words carries per-word
// confidence when the provider supplies it and may be empty.
type Transcription struct {
	Text  string           `json:"text"`
	Words []RecognizedWord `json:"words,omitempty"`
}

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts a complete recording to text
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (*Transcription, error)
	// InitTranscribeStreaming initializes a streaming transcription session
	InitTranscribeStreaming(ctx context.Context, config AudioConfig) (SpeechToTextStreaming, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// SpeechToTextStreaming is one live transcription exchange. End closes
// the audio stream and waits for the result; Close abandons the
// exchange and releases provider resources without one.
type SpeechToTextStreaming interface {
	Stream(data []byte) error
	End() (*Transcription, error)
	Close() error
}

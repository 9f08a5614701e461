package repositories

import "context"

// Voice describes a synthetic voice offered by a speech provider
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
	Remote   bool   `json:"remote"`
	Default  bool   `json:"default"`
}

// SynthesisOptions selects the voice and delivery for one utterance
type SynthesisOptions struct {
	VoiceID  string  `json:"voice_id"`
	Language string  `json:"language"`
	Rate     float64 `json:"rate"`
}

// TextToSpeech abstracts a speech synthesis provider
type TextToSpeech interface {
	// Synthesize converts one chunk of text to audio, streamed as byte chunks.
	// The channel is closed when synthesis finishes or the context is cancelled.
	Synthesize(ctx context.Context, text string, opts SynthesisOptions) (<-chan []byte, error)
	// Voices lists the voices the provider currently offers
	Voices(ctx context.Context) ([]Voice, error)
}

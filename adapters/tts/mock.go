package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// MockTextToSpeech is a placeholder synthesizer for development without
// an Eleven Labs API key.
type MockTextToSpeech struct {
	logger *zap.Logger
}

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTextToSpeech{logger: logger}
}

// Synthesize implements repositories.TextToSpeech with patterned bytes
// sized to the input text.
func (t *MockTextToSpeech) Synthesize(ctx context.Context, text string, opts repositories.SynthesisOptions) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	t.logger.Info("Processing mock text-to-speech",
		zap.Int("textLen", len(text)),
		zap.String("voiceID", opts.VoiceID),
		zap.Float64("rate", opts.Rate))

	audioChan := make(chan []byte, 4)
	go func() {
		defer close(audioChan)

		// Simulate audio at roughly 100 bytes per character, chunked.
		total := len(text) * 100
		const chunk = 2048
		for off := 0; off < total; off += chunk {
			n := chunk
			if total-off < n {
				n = total - off
			}
			data := make([]byte, n)
			for i := range data {
				data[i] = byte((off + i) % 256)
			}
			select {
			case audioChan <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	return audioChan, nil
}

// Voices returns a fixed voice inventory that exercises the ranker
func (t *MockTextToSpeech) Voices(ctx context.Context) ([]repositories.Voice, error) {
	return []repositories.Voice{
		{ID: "mock-aria", Name: "Aria Neural", Language: "en-US", Gender: "female", Remote: true, Default: true},
		{ID: "mock-guy", Name: "Guy Neural", Language: "en-US", Gender: "male", Remote: true},
		{ID: "mock-sonia", Name: "Sonia Natural", Language: "en-GB", Gender: "female", Remote: true},
		{ID: "mock-ryan", Name: "Ryan Natural", Language: "en-GB", Gender: "male", Remote: true},
		{ID: "mock-compact", Name: "Fred Compact", Language: "en-US", Gender: "male"},
	}, nil
}

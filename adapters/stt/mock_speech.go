package stt

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// MockSpeechToText is a placeholder implementation for speech recognition
type MockSpeechToText struct {
	logger *zap.Logger
}

// MockSpeechToTextStream is a mock implementation of streaming speech recognition
type MockSpeechToTextStream struct {
	logger        *zap.Logger
	audioReceived bool
	closed        bool
	transcription string
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) repositories.SpeechToText {
	return &MockSpeechToText{
		logger: logger,
	}
}

// InitTranscribeStreaming creates a new mock streaming session
func (s *MockSpeechToText) InitTranscribeStreaming(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	s.logger.Info("Initializing mock streaming transcription",
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding),
		zap.String("language", config.Language))

	return &MockSpeechToTextStream{
		logger: s.logger,
	}, nil
}

// Stream implements mock streaming audio processing
func (m *MockSpeechToTextStream) Stream(data []byte) error {
	m.logger.Info("Processing mock audio chunk", zap.Int("size", len(data)))

	if len(data) > 0 {
		m.audioReceived = true
		m.transcription = mockTranscript(len(data))
	}

	return nil
}

// End returns the mock transcription result
func (m *MockSpeechToTextStream) End() (*repositories.Transcription, error) {
	m.logger.Info("Ending mock transcription stream", zap.String("result", m.transcription))

	if m.closed {
		return nil, fmt.Errorf("transcription stream is closed")
	}
	if !m.audioReceived {
		return nil, fmt.Errorf("no audio data received")
	}
	if m.transcription == "" {
		return nil, fmt.Errorf("no speech detected in audio")
	}

	return mockTranscription(m.transcription), nil
}

// Close abandons the mock stream without a result
func (m *MockSpeechToTextStream) Close() error {
	m.closed = true
	m.logger.Info("Closing mock transcription stream")
	return nil
}

// TranscribeAudio implements repositories.SpeechToText
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (*repositories.Transcription, error) {
	s.logger.Info("Processing speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding))

	if len(audioData) == 0 {
		return nil, fmt.Errorf("no audio data received")
	}

	return mockTranscription(mockTranscript(len(audioData))), nil
}

// mockTranscript picks a canned learner sentence by audio size
func mockTranscript(size int) string {
	switch {
	case size > 10000:
		return "I would like to talk about what I did last weekend."
	case size > 5000:
		return "Thank you for listening to my story."
	case size > 1000:
		return "Nice to meet you!"
	default:
		return "Hello"
	}
}

// mockTranscription fabricates confident word info for the transcript
func mockTranscription(text string) *repositories.Transcription {
	tr := &repositories.Transcription{Text: text}
	for _, word := range strings.Fields(text) {
		tr.Words = append(tr.Words, repositories.RecognizedWord{
			Word:       word,
			Confidence: 0.92,
		})
	}
	return tr
}

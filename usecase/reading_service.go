package usecase

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// Below this recognizer confidence a matched word counts as
// mispronounced rather than read correctly.
const lowConfidence = 0.5

// ReadingResult reports how closely a learner's reading matched the target
type ReadingResult struct {
	Target        string   `json:"target"`
	Transcript    string   `json:"transcript"`
	Score         int      `json:"score"`
	Missed        []string `json:"missed,omitempty"`
	Mispronounced []string `json:"mispronounced,omitempty"`
}

// ReadingService scores read-aloud practice using speech recognition
type ReadingService struct {
	stt    repositories.SpeechToText
	logger *zap.Logger
}

// NewReadingService creates a new reading practice service
func NewReadingService(stt repositories.SpeechToText, logger *zap.Logger) *ReadingService {
	return &ReadingService{
		stt:    stt,
		logger: logger,
	}
}

// OpenStream starts a streaming transcription session for microphone audio
func (s *ReadingService) OpenStream(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	return s.stt.InitTranscribeStreaming(ctx, defaultedConfig(config))
}

// Assess transcribes a complete recording and scores it against the target
func (s *ReadingService) Assess(ctx context.Context, target string, audio []byte, config repositories.AudioConfig) (*ReadingResult, error) {
	transcription, err := s.stt.TranscribeAudio(ctx, audio, defaultedConfig(config))
	if err != nil {
		return nil, err
	}
	return s.Score(target, transcription), nil
}

// Score compares a transcription against the target sentence word by
// word. The score is the percentage of target words read correctly;
// skipped words are reported as missed, and words the recognizer heard
// only with low confidence as mispronounced.
func (s *ReadingService) Score(target string, transcription *repositories.Transcription) *ReadingResult {
	if transcription == nil {
		transcription = &repositories.Transcription{}
	}

	targetWords := normalizeWords(target)
	spokenWords := normalizeWords(transcription.Text)
	confidence := wordConfidences(transcription.Words)

	spoken := make(map[string]int, len(spokenWords))
	for _, w := range spokenWords {
		spoken[w]++
	}

	var matched int
	var missed, mispronounced []string
	for _, w := range targetWords {
		if spoken[w] == 0 {
			missed = append(missed, w)
			continue
		}
		spoken[w]--
		if c, ok := confidence[w]; ok && c < lowConfidence {
			mispronounced = append(mispronounced, w)
			continue
		}
		matched++
	}

	score := 0
	if len(targetWords) > 0 {
		score = matched * 100 / len(targetWords)
	}

	s.logger.Debug("Reading scored",
		zap.Int("targetWords", len(targetWords)),
		zap.Int("matched", matched),
		zap.Int("mispronounced", len(mispronounced)),
		zap.Int("score", score))

	return &ReadingResult{
		Target:        target,
		Transcript:    transcription.Text,
		Score:         score,
		Missed:        missed,
		Mispronounced: mispronounced,
	}
}

func defaultedConfig(config repositories.AudioConfig) repositories.AudioConfig {
	if config.Language == "" {
		config.Language = "en-US"
	}
	if config.SampleRate == 0 {
		config.SampleRate = 16000
	}
	if config.Encoding == "" {
		config.Encoding = "WEBM_OPUS"
	}
	return config
}

// wordConfidences keeps the lowest confidence seen per normalized word
func wordConfidences(words []repositories.RecognizedWord) map[string]float64 {
	if len(words) == 0 {
		return nil
	}
	m := make(map[string]float64, len(words))
	for _, w := range words {
		for _, norm := range normalizeWords(w.Word) {
			if c, ok := m[norm]; !ok || w.Confidence < c {
				m[norm] = w.Confidence
			}
		}
	}
	return m
}

// normalizeWords lowercases and strips punctuation, returning the
// comparable word sequence.
func normalizeWords(text string) []string {
	var words []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
		})
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

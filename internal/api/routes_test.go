package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/shun-hikari/shun-gunma/adapters/llm"
	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
	"github.com/shun-hikari/shun-gunma/internal/websocket"
	"github.com/shun-hikari/shun-gunma/usecase"
)

// apiTTS serves a fixed voice inventory for route tests
type apiTTS struct{}

func (apiTTS) Synthesize(ctx context.Context, text string, opts repositories.SynthesisOptions) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (apiTTS) Voices(ctx context.Context) ([]repositories.Voice, error) {
	return []repositories.Voice{
		{ID: "v1", Name: "Aria Neural", Language: "en-US", Remote: true},
		{ID: "v2", Name: "Fred Compact", Language: "en-US"},
		{ID: "v3", Name: "Kyoko", Language: "ja-JP"},
	}, nil
}

// apiSTT hears every recording as the same sentence
type apiSTT struct{}

func (apiSTT) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (*repositories.Transcription, error) {
	return &repositories.Transcription{
		Text: "nice to meet you",
		Words: []repositories.RecognizedWord{
			{Word: "nice", Confidence: 0.93},
			{Word: "to", Confidence: 0.95},
			{Word: "meet", Confidence: 0.9},
			{Word: "you", Confidence: 0.92},
		},
	}, nil
}

func (apiSTT) InitTranscribeStreaming(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	return nil, nil
}

func setupTestAPI(t *testing.T) *echo.Echo {
	t.Helper()
	logger := zaptest.NewLogger(t)

	tts := apiTTS{}
	reading := usecase.NewReadingService(apiSTT{}, logger)
	hub := websocket.NewHub(tts, reading, logger)

	lessons := usecase.NewLessonService(llm.NewMockLessonGenerator(), logger)
	quiz := usecase.NewQuizService()

	e := echo.New()
	InitRoutes(e, hub, lessons, quiz, reading, tts, logger)
	return e
}

// newAssessRequest builds a multipart reading-assess request
func newAssessRequest(t *testing.T, target string, audio []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if target != "" {
		if err := writer.WriteField("target", target); err != nil {
			t.Fatalf("Failed to write target field: %v", err)
		}
	}
	if audio != nil {
		part, err := writer.CreateFormFile("audio", "reading.webm")
		if err != nil {
			t.Fatalf("Failed to create audio part: %v", err)
		}
		if _, err := part.Write(audio); err != nil {
			t.Fatalf("Failed to write audio part: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reading/assess", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	e := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected ok status, got %q", body["status"])
	}
}

func TestGenerateLessonEndpoint(t *testing.T) {
	e := setupTestAPI(t)

	payload := `{"kind": "dialogue", "topic": "travel", "level": "beginner"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lessons", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var lesson entities.Lesson
	if err := json.Unmarshal(rec.Body.Bytes(), &lesson); err != nil {
		t.Fatalf("Failed to decode lesson: %v", err)
	}
	if lesson.Kind != entities.LessonKindDialogue {
		t.Errorf("Expected dialogue lesson, got %s", lesson.Kind)
	}
	if len(lesson.Lines) == 0 {
		t.Error("Expected dialogue lines in the lesson")
	}
}

func TestGenerateLessonValidation(t *testing.T) {
	e := setupTestAPI(t)

	tests := []struct {
		name     string
		payload  string
		wantCode int
	}{
		{"missing kind", `{"topic": "travel"}`, http.StatusBadRequest},
		{"unknown kind", `{"kind": "podcast"}`, http.StatusBadGateway},
		{"malformed JSON", `{"kind":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/lessons", strings.NewReader(tt.payload))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCheckQuizEndpoint(t *testing.T) {
	e := setupTestAPI(t)

	payload := `{
		"questions": [
			{"prompt": "Q1", "choices": ["a", "b", "c", "d"], "answer": 1},
			{"prompt": "Q2", "choices": ["a", "b", "c", "d"], "answer": 0}
		],
		"answers": [1, 3]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quiz/check", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result usecase.QuizResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Total != 2 || result.Correct != 1 || result.Score != 50 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestCheckQuizRequiresQuestions(t *testing.T) {
	e := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quiz/check", strings.NewReader(`{"answers": [1]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAssessReadingEndpoint(t *testing.T) {
	e := setupTestAPI(t)

	req := newAssessRequest(t, "Nice to meet you.", []byte("webm audio bytes"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result usecase.ReadingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("Expected score 100, got %d", result.Score)
	}
	if result.Transcript != "nice to meet you" {
		t.Errorf("Unexpected transcript: %q", result.Transcript)
	}
}

func TestAssessReadingRequiresFields(t *testing.T) {
	e := setupTestAPI(t)

	tests := []struct {
		name   string
		target string
		audio  []byte
	}{
		{"missing target", "", []byte("audio")},
		{"missing audio", "Nice to meet you.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newAssessRequest(t, tt.target, tt.audio)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if body.Error != "missing_fields" {
				t.Errorf("Expected missing_fields error, got %q", body.Error)
			}
		})
	}
}

func TestListVoicesEndpoint(t *testing.T) {
	e := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/voices?lang=en", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body VoicesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(body.Voices) != 2 {
		t.Fatalf("Expected 2 English voices, got %d", len(body.Voices))
	}
	if body.Voices[0].ID != "v1" {
		t.Errorf("Expected best voice first, got %s", body.Voices[0].ID)
	}
	for _, v := range body.Voices {
		if v.Language == "ja-JP" {
			t.Error("Japanese voice leaked into English listing")
		}
	}
}

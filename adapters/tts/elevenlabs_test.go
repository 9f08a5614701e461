package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVEN_LABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}

	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}

	if tts.outputFormat != defaultOutputFormat {
		t.Errorf("Expected default output format '%s', got '%s'", defaultOutputFormat, tts.outputFormat)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  ElevenLabsConfig
		wantErr bool
	}{
		{
			name:    "valid minimal config",
			config:  ElevenLabsConfig{APIKey: "key"},
			wantErr: false,
		},
		{
			name:    "missing API key",
			config:  ElevenLabsConfig{},
			wantErr: true,
		},
		{
			name:    "stability out of range",
			config:  ElevenLabsConfig{APIKey: "key", Stability: 1.5},
			wantErr: true,
		},
		{
			name:    "clarity out of range",
			config:  ElevenLabsConfig{APIKey: "key", Clarity: -0.5},
			wantErr: true,
		},
		{
			name:    "negative chunk size",
			config:  ElevenLabsConfig{APIKey: "key", ChunkSize: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElevenLabsConfig(tt.config)
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
		})
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	logger := zaptest.NewLogger(t)
	audio := []byte("fake-mp3-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/text-to-speech/custom-voice/stream") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Errorf("Missing API key header")
		}

		var req ElevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Text != "Hello there." {
			t.Errorf("Unexpected text: %q", req.Text)
		}
		if req.VoiceSettings.Speed != 1.5 {
			t.Errorf("Expected speed 1.5, got %v", req.VoiceSettings.Speed)
		}

		w.Write(audio)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	audioChan, err := tts.Synthesize(context.Background(), "Hello there.", repositories.SynthesisOptions{
		VoiceID: "custom-voice",
		Rate:    1.5,
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	var received []byte
	for chunk := range audioChan {
		received = append(received, chunk...)
	}
	if string(received) != string(audio) {
		t.Errorf("Expected %q audio bytes, got %q", audio, received)
	}
}

func TestElevenLabsSynthesizeEmptyText(t *testing.T) {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}
	if _, err := tts.Synthesize(context.Background(), "   ", repositories.SynthesisOptions{}); err == nil {
		t.Error("Expected error for empty text")
	}
}

func TestElevenLabsSynthesizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "key", APIBaseURL: server.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}
	if _, err := tts.Synthesize(context.Background(), "Hello.", repositories.SynthesisOptions{}); err == nil {
		t.Error("Expected API error to surface")
	}
}

func TestElevenLabsVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"voices": []map[string]interface{}{
				{
					"voice_id": defaultVoiceID,
					"name":     "Rachel",
					"labels":   map[string]string{"accent": "american", "gender": "female"},
				},
				{
					"voice_id": "other",
					"name":     "George",
					"labels":   map[string]string{"accent": "british", "gender": "male"},
				},
			},
		})
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "key", APIBaseURL: server.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	voices, err := tts.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices failed: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(voices))
	}

	rachel := voices[0]
	if rachel.Language != "en-US" || rachel.Gender != "female" {
		t.Errorf("Rachel not mapped: %+v", rachel)
	}
	if !rachel.Default {
		t.Error("Expected configured fallback voice to be marked default")
	}
	if !rachel.Remote {
		t.Error("Expected provider voices to be marked remote")
	}
	if voices[1].Language != "en-GB" || voices[1].Default {
		t.Errorf("George not mapped: %+v", voices[1])
	}
}

func TestVoiceLanguage(t *testing.T) {
	tests := []struct {
		accent string
		want   string
	}{
		{"american", "en-US"},
		{"British", "en-GB"},
		{"australian", "en-AU"},
		{"", "en"},
		{"german", "en"},
	}
	for _, tt := range tests {
		if got := voiceLanguage(map[string]string{"accent": tt.accent}); got != tt.want {
			t.Errorf("voiceLanguage(%q): expected %s, got %s", tt.accent, tt.want, got)
		}
	}
}
